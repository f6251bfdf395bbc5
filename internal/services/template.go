package services

import (
	"context"
	"strings"

	"github.com/princeprakhar/reviewflow-backend/internal/models"
	"gorm.io/gorm"
)

// FallbackResponse is sent when the owner has no default template for the
// review's bucket.
const FallbackResponse = "Thank you for your review! We appreciate your feedback."

// SelectResponse returns the text of the default template matching the
// rating's bucket, or FallbackResponse. It never fails.
func SelectResponse(rating int, templates []models.ResponseTemplate) string {
	bucket := models.BucketForRating(rating)
	for _, template := range templates {
		if template.IsDefault && template.RatingRange == bucket {
			return template.TemplateText
		}
	}
	return FallbackResponse
}

type TemplateService struct {
	db *gorm.DB
}

func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{db: db}
}

type CreateTemplateRequest struct {
	Name         string `json:"name" binding:"required"`
	TemplateText string `json:"template_text" binding:"required"`
	RatingRange  string `json:"rating_range" binding:"omitempty,rating_range"`
	IsDefault    bool   `json:"is_default"`
}

type UpdateTemplateRequest struct {
	Name         *string `json:"name,omitempty"`
	TemplateText *string `json:"template_text,omitempty"`
	RatingRange  *string `json:"rating_range,omitempty" binding:"omitempty,rating_range"`
	IsDefault    *bool   `json:"is_default,omitempty"`
}

func (s *TemplateService) ListTemplates(ctx context.Context, userID uint) ([]models.ResponseTemplate, error) {
	templates := make([]models.ResponseTemplate, 0)
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&templates).Error; err != nil {
		return nil, dbError("list templates", err)
	}
	return templates, nil
}

// DefaultTemplates returns the templates eligible for automatic selection.
func (s *TemplateService) DefaultTemplates(ctx context.Context, userID uint) ([]models.ResponseTemplate, error) {
	var templates []models.ResponseTemplate
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		Order("id DESC").
		Find(&templates).Error; err != nil {
		return nil, dbError("load default templates", err)
	}
	return templates, nil
}

func (s *TemplateService) CreateTemplate(ctx context.Context, userID uint, req CreateTemplateRequest) (*models.ResponseTemplate, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "name is required")
	}
	text := strings.TrimSpace(req.TemplateText)
	if text == "" {
		return nil, invalid("template_text", "template text is required")
	}
	ratingRange, err := parseOptionalRange(req.RatingRange)
	if err != nil {
		return nil, err
	}
	if req.IsDefault && ratingRange == "" {
		return nil, invalid("rating_range", "a default template needs a rating range")
	}

	template := models.ResponseTemplate{
		UserID:       userID,
		Name:         name,
		TemplateText: text,
		RatingRange:  ratingRange,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			return promoteDefault(tx, &template)
		}
		return tx.Create(&template).Error
	})
	if err != nil {
		return nil, dbError("create template", err)
	}
	return &template, nil
}

func (s *TemplateService) UpdateTemplate(ctx context.Context, userID, templateID uint, req UpdateTemplateRequest) (*models.ResponseTemplate, error) {
	template, err := findOwned[models.ResponseTemplate](ctx, s.db, userID, templateID, ErrTemplateNotFound)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name", "name cannot be empty")
		}
		template.Name = name
	}
	if req.TemplateText != nil {
		text := strings.TrimSpace(*req.TemplateText)
		if text == "" {
			return nil, invalid("template_text", "template text cannot be empty")
		}
		template.TemplateText = text
	}
	rangeChanged := false
	if req.RatingRange != nil {
		ratingRange, err := parseOptionalRange(*req.RatingRange)
		if err != nil {
			return nil, err
		}
		rangeChanged = ratingRange != template.RatingRange
		template.RatingRange = ratingRange
	}
	if req.IsDefault != nil {
		template.IsDefault = *req.IsDefault
	}
	if template.IsDefault && template.RatingRange == "" {
		return nil, invalid("rating_range", "a default template needs a rating range")
	}

	promote := template.IsDefault && (rangeChanged || (req.IsDefault != nil && *req.IsDefault))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if promote {
			return promoteDefault(tx, template)
		}
		return tx.Save(template).Error
	})
	if err != nil {
		return nil, dbError("update template", err)
	}
	return template, nil
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, userID, templateID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", templateID, userID).
		Delete(&models.ResponseTemplate{})
	if result.Error != nil {
		return dbError("delete template", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// promoteDefault saves template as the only default for its (user, rating
// range) pair, demoting any previous default first. Callers run it inside a
// transaction.
func promoteDefault(tx *gorm.DB, template *models.ResponseTemplate) error {
	demote := tx.Model(&models.ResponseTemplate{}).
		Where("user_id = ? AND rating_range = ? AND is_default = ?", template.UserID, template.RatingRange, true)
	if template.ID != 0 {
		demote = demote.Where("id <> ?", template.ID)
	}
	if err := demote.Update("is_default", false).Error; err != nil {
		return err
	}

	template.IsDefault = true
	return tx.Save(template).Error
}

func parseOptionalRange(value string) (models.RatingRange, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	ratingRange, err := models.ParseRatingRange(value)
	if err != nil {
		return "", invalid("rating_range", err.Error())
	}
	return ratingRange, nil
}
