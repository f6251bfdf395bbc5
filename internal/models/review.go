package models

import (
	"time"
)

const DefaultReviewSource = "google"

type Review struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	UserID       uint         `json:"user_id" gorm:"not null;index;uniqueIndex:idx_reviews_user_external"`
	ExternalID   *string      `json:"review_id" gorm:"column:review_id;uniqueIndex:idx_reviews_user_external"`
	AuthorName   string       `json:"author_name" gorm:"not null"`
	AuthorEmail  *string      `json:"author_email"`
	Rating       int          `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	ReviewText   *string      `json:"review_text"`
	ReviewDate   time.Time    `json:"review_date" gorm:"not null;index"`
	Responded    bool         `json:"responded" gorm:"not null"`
	ResponseText *string      `json:"response_text"`
	ResponseDate *time.Time   `json:"response_date"`
	Source       string       `json:"source" gorm:"not null"`
	Status       ReviewStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ResponseTemplate is a canned reply. At most one template per (user, rating range)
// carries IsDefault.
type ResponseTemplate struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	UserID       uint        `json:"user_id" gorm:"not null;index:idx_templates_user_range"`
	Name         string      `json:"name" gorm:"not null"`
	TemplateText string      `json:"template_text" gorm:"type:text;not null"`
	RatingRange  RatingRange `json:"rating_range" gorm:"type:varchar(8);index:idx_templates_user_range"`
	IsDefault    bool        `json:"is_default" gorm:"not null"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (ResponseTemplate) TableName() string {
	return "response_templates"
}
