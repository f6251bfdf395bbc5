package services

import (
	"context"
	"errors"

	"github.com/princeprakhar/reviewflow-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AutomationService struct {
	db *gorm.DB
}

func NewAutomationService(db *gorm.DB) *AutomationService {
	return &AutomationService{db: db}
}

// UpdateSettingsRequest is a partial update; nil fields keep their value.
type UpdateSettingsRequest struct {
	AutoResponseEnabled  *bool `json:"auto_response_enabled,omitempty"`
	AIResponseEnabled    *bool `json:"ai_response_enabled,omitempty"`
	ReviewRequestEnabled *bool `json:"review_request_enabled,omitempty"`
	NegativeAlertEnabled *bool `json:"negative_alert_enabled,omitempty"`
	NegativeThreshold    *int  `json:"negative_threshold,omitempty" binding:"omitempty,min=1,max=5"`
}

// GetSettings returns the user's settings, creating the defaults on first access.
func (s *AutomationService) GetSettings(ctx context.Context, userID uint) (*models.AutomationSettings, error) {
	var settings models.AutomationSettings
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dbError("load automation settings", err)
	}

	settings = models.DefaultAutomationSettings(userID)
	// A concurrent first read may have inserted the row already.
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&settings).Error; err != nil {
		return nil, dbError("create automation settings", err)
	}
	if settings.ID == 0 {
		if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
			return nil, dbError("reload automation settings", err)
		}
	}
	return &settings, nil
}

func (s *AutomationService) UpdateSettings(ctx context.Context, userID uint, req UpdateSettingsRequest) (*models.AutomationSettings, error) {
	if req.NegativeThreshold != nil && (*req.NegativeThreshold < 1 || *req.NegativeThreshold > 5) {
		return nil, invalid("negative_threshold", "negative threshold must be between 1 and 5")
	}

	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.AutoResponseEnabled != nil {
		updates["auto_response_enabled"] = *req.AutoResponseEnabled
	}
	if req.AIResponseEnabled != nil {
		updates["ai_response_enabled"] = *req.AIResponseEnabled
	}
	if req.ReviewRequestEnabled != nil {
		updates["review_request_enabled"] = *req.ReviewRequestEnabled
	}
	if req.NegativeAlertEnabled != nil {
		updates["negative_alert_enabled"] = *req.NegativeAlertEnabled
	}
	if req.NegativeThreshold != nil {
		updates["negative_threshold"] = *req.NegativeThreshold
	}
	if len(updates) == 0 {
		return settings, nil
	}

	if err := s.db.WithContext(ctx).Model(settings).Updates(updates).Error; err != nil {
		return nil, dbError("update automation settings", err)
	}
	if err := s.db.WithContext(ctx).First(settings, settings.ID).Error; err != nil {
		return nil, dbError("reload automation settings", err)
	}
	return settings, nil
}
