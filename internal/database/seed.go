package database

import (
	"errors"

	"github.com/princeprakhar/reviewflow-backend/internal/models"
	"gorm.io/gorm"
)

const (
	DemoEmail    = "demo@reviewflow.com"
	DemoPassword = "demo123"
)

// SeedDemo creates a demo account with default templates and a sample
// campaign. It does nothing when the demo account already exists.
func SeedDemo(db *gorm.DB) (bool, error) {
	var existing models.User
	err := db.Where("email = ?", DemoEmail).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	companyName := "Demo Company"
	err = db.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			Email:            DemoEmail,
			Password:         DemoPassword,
			Name:             "Demo User",
			CompanyName:      &companyName,
			SubscriptionPlan: models.PlanPro,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		settings := models.DefaultAutomationSettings(user.ID)
		if err := tx.Create(&settings).Error; err != nil {
			return err
		}

		templates := []models.ResponseTemplate{
			{
				UserID:       user.ID,
				Name:         "Positive Review Response",
				TemplateText: "Thank you so much for taking the time to leave us such a wonderful review! We truly appreciate your business and look forward to serving you again.",
				RatingRange:  models.RatingRangeHigh,
				IsDefault:    true,
			},
			{
				UserID:       user.ID,
				Name:         "Negative Review Response",
				TemplateText: "Thank you for your feedback. We're sorry to hear about your experience. We'd like to make this right. Please contact us directly so we can address your concerns.",
				RatingRange:  models.RatingRangeLow,
				IsDefault:    true,
			},
		}
		if err := tx.Create(&templates).Error; err != nil {
			return err
		}

		campaign := models.Campaign{
			UserID:          user.ID,
			Name:            "Post-Purchase Review Request",
			Type:            models.CampaignTypeEmail,
			Status:          models.CampaignStatusActive,
			SendDelayDays:   3,
			MessageTemplate: "Hi {customer_name}, thank you for your recent purchase! We'd love to hear about your experience.",
		}
		return tx.Create(&campaign).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
