package models

import (
	"time"
)

// Campaign solicits reviews from a list of recipients. TotalSent and
// TotalCollected are only ever incremented by dispatch and conversion.
type Campaign struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"user_id" gorm:"not null;index"`
	Name            string         `json:"name" gorm:"not null"`
	Type            CampaignType   `json:"type" gorm:"type:varchar(16);not null"`
	Status          CampaignStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	SendDelayDays   int            `json:"send_delay_days" gorm:"not null"`
	MessageTemplate string         `json:"message_template" gorm:"type:text;not null"`
	TotalSent       int            `json:"total_sent" gorm:"not null"`
	TotalCollected  int            `json:"total_collected" gorm:"not null"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	Recipients []CampaignRecipient `json:"recipients,omitempty" gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE"`
}

type CampaignRecipient struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	CampaignID      uint            `json:"campaign_id" gorm:"not null;index"`
	CustomerName    string          `json:"customer_name" gorm:"not null"`
	CustomerEmail   *string         `json:"customer_email"`
	CustomerPhone   *string         `json:"customer_phone"`
	Status          RecipientStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	SentAt          *time.Time      `json:"sent_at"`
	ReviewSubmitted bool            `json:"review_submitted" gorm:"not null"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Converted reports whether the recipient went on to leave a review.
func (r CampaignRecipient) Converted() bool {
	return r.Status == RecipientStatusSent && r.ReviewSubmitted
}
