package services

import (
	"context"

	"github.com/princeprakhar/reviewflow-backend/internal/models"
	"gorm.io/gorm"
)

// findOwned loads a user-owned record. A record owned by someone else is
// reported exactly like a missing one.
func findOwned[T any](ctx context.Context, db *gorm.DB, userID, id uint, notFound error) (*T, error) {
	var record T
	if err := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&record).Error; err != nil {
		return nil, lookupError("find owned record", err, notFound)
	}
	return &record, nil
}

// findOwnedRecipient loads a recipient whose campaign belongs to userID.
func findOwnedRecipient(ctx context.Context, db *gorm.DB, userID, campaignID, recipientID uint) (*models.CampaignRecipient, error) {
	if _, err := findOwned[models.Campaign](ctx, db, userID, campaignID, ErrCampaignNotFound); err != nil {
		return nil, err
	}

	var recipient models.CampaignRecipient
	if err := db.WithContext(ctx).
		Where("id = ? AND campaign_id = ?", recipientID, campaignID).
		First(&recipient).Error; err != nil {
		return nil, lookupError("find recipient", err, ErrRecipientNotFound)
	}
	return &recipient, nil
}
