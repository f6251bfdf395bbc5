package models

import (
	"time"
)

const DefaultNegativeThreshold = 3

// AutomationSettings holds per-user feature toggles. A row is created lazily on
// first read.
type AutomationSettings struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	UserID               uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	AutoResponseEnabled  bool      `json:"auto_response_enabled" gorm:"not null"`
	AIResponseEnabled    bool      `json:"ai_response_enabled" gorm:"not null"`
	ReviewRequestEnabled bool      `json:"review_request_enabled" gorm:"not null"`
	NegativeAlertEnabled bool      `json:"negative_alert_enabled" gorm:"not null"`
	NegativeThreshold    int       `json:"negative_threshold" gorm:"not null"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func DefaultAutomationSettings(userID uint) AutomationSettings {
	return AutomationSettings{
		UserID:               userID,
		AutoResponseEnabled:  true,
		AIResponseEnabled:    true,
		ReviewRequestEnabled: true,
		NegativeAlertEnabled: true,
		NegativeThreshold:    DefaultNegativeThreshold,
	}
}

// ShouldAlert reports whether a review with the given rating should raise a
// negative-review alert.
func (s AutomationSettings) ShouldAlert(rating int) bool {
	return s.NegativeAlertEnabled && rating <= s.NegativeThreshold
}
