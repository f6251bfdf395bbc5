package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/princeprakhar/reviewflow-backend/internal/models"
	"github.com/princeprakhar/reviewflow-backend/internal/utils"
	"github.com/princeprakhar/reviewflow-backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CampaignService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

func NewCampaignService(db *gorm.DB, notifier Notifier) *CampaignService {
	return &CampaignService{db: db, notifier: notifier, now: time.Now}
}

type CreateCampaignRequest struct {
	Name            string `json:"name" binding:"required"`
	Type            string `json:"type" binding:"required"`
	SendDelayDays   int    `json:"send_delay_days" binding:"min=0"`
	MessageTemplate string `json:"message_template" binding:"required"`
}

// UpdateCampaignRequest never carries counters; they only change through
// dispatch and conversion.
type UpdateCampaignRequest struct {
	Name            *string `json:"name,omitempty"`
	Type            *string `json:"type,omitempty"`
	SendDelayDays   *int    `json:"send_delay_days,omitempty" binding:"omitempty,min=0"`
	MessageTemplate *string `json:"message_template,omitempty"`
	Status          *string `json:"status,omitempty" binding:"omitempty,campaign_status"`
}

type CampaignStatusRequest struct {
	Status string `json:"status" binding:"required,campaign_status"`
}

type RecipientInput struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

type AddRecipientsRequest struct {
	Recipients []RecipientInput `json:"recipients" binding:"required,dive"`
}

type DispatchResult struct {
	Dispatched int              `json:"dispatched"`
	Campaign   *models.Campaign `json:"campaign"`
}

func (s *CampaignService) ListCampaigns(ctx context.Context, userID uint) ([]models.Campaign, error) {
	campaigns := make([]models.Campaign, 0)
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&campaigns).Error; err != nil {
		return nil, dbError("list campaigns", err)
	}
	return campaigns, nil
}

// GetCampaign returns the campaign together with its recipients.
func (s *CampaignService) GetCampaign(ctx context.Context, userID, campaignID uint) (*models.Campaign, error) {
	campaign, err := findOwned[models.Campaign](ctx, s.db, userID, campaignID, ErrCampaignNotFound)
	if err != nil {
		return nil, err
	}

	campaign.Recipients = make([]models.CampaignRecipient, 0)
	if err := s.db.WithContext(ctx).
		Where("campaign_id = ?", campaign.ID).
		Order("id ASC").
		Find(&campaign.Recipients).Error; err != nil {
		return nil, dbError("load campaign recipients", err)
	}
	return campaign, nil
}

func (s *CampaignService) CreateCampaign(ctx context.Context, userID uint, req CreateCampaignRequest) (*models.Campaign, error) {
	name := utils.SanitizeString(req.Name)
	if name == "" {
		return nil, invalid("name", "name is required")
	}
	campaignType, err := models.ParseCampaignType(req.Type)
	if err != nil {
		return nil, invalid("type", err.Error())
	}
	template := strings.TrimSpace(req.MessageTemplate)
	if template == "" {
		return nil, invalid("message_template", "message template is required")
	}
	if req.SendDelayDays < 0 {
		return nil, invalid("send_delay_days", "send delay cannot be negative")
	}

	campaign := models.Campaign{
		UserID:          userID,
		Name:            name,
		Type:            campaignType,
		Status:          models.CampaignStatusActive,
		SendDelayDays:   req.SendDelayDays,
		MessageTemplate: template,
	}
	if err := s.db.WithContext(ctx).Create(&campaign).Error; err != nil {
		return nil, dbError("create campaign", err)
	}
	return &campaign, nil
}

func (s *CampaignService) UpdateCampaign(ctx context.Context, userID, campaignID uint, req UpdateCampaignRequest) (*models.Campaign, error) {
	campaign, err := findOwned[models.Campaign](ctx, s.db, userID, campaignID, ErrCampaignNotFound)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := utils.SanitizeString(*req.Name)
		if name == "" {
			return nil, invalid("name", "name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Type != nil {
		campaignType, err := models.ParseCampaignType(*req.Type)
		if err != nil {
			return nil, invalid("type", err.Error())
		}
		updates["type"] = campaignType
	}
	if req.SendDelayDays != nil {
		if *req.SendDelayDays < 0 {
			return nil, invalid("send_delay_days", "send delay cannot be negative")
		}
		updates["send_delay_days"] = *req.SendDelayDays
	}
	if req.MessageTemplate != nil {
		template := strings.TrimSpace(*req.MessageTemplate)
		if template == "" {
			return nil, invalid("message_template", "message template cannot be empty")
		}
		updates["message_template"] = template
	}
	if req.Status != nil {
		status, err := models.ParseCampaignStatus(*req.Status)
		if err != nil {
			return nil, invalid("status", err.Error())
		}
		updates["status"] = status
	}
	if len(updates) == 0 {
		return campaign, nil
	}

	if err := s.db.WithContext(ctx).Model(campaign).Updates(updates).Error; err != nil {
		return nil, dbError("update campaign", err)
	}
	return findOwned[models.Campaign](ctx, s.db, userID, campaignID, ErrCampaignNotFound)
}

func (s *CampaignService) SetStatus(ctx context.Context, userID, campaignID uint, value string) (*models.Campaign, error) {
	status, err := models.ParseCampaignStatus(value)
	if err != nil {
		return nil, invalid("status", err.Error())
	}
	return s.UpdateCampaign(ctx, userID, campaignID, UpdateCampaignRequest{Status: (*string)(&status)})
}

func (s *CampaignService) DeleteCampaign(ctx context.Context, userID, campaignID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", campaignID, userID).
		Delete(&models.Campaign{})
	if result.Error != nil {
		return dbError("delete campaign", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

// AddRecipients inserts every entry as a pending recipient. The batch is
// all-or-nothing.
func (s *CampaignService) AddRecipients(ctx context.Context, userID, campaignID uint, inputs []RecipientInput) ([]models.CampaignRecipient, error) {
	if len(inputs) == 0 {
		return nil, invalid("recipients", "recipients array is required")
	}

	campaign, err := findOwned[models.Campaign](ctx, s.db, userID, campaignID, ErrCampaignNotFound)
	if err != nil {
		return nil, err
	}

	recipients := make([]models.CampaignRecipient, 0, len(inputs))
	for i, input := range inputs {
		name := utils.SanitizeString(input.Name)
		if name == "" {
			return nil, invalid(fmt.Sprintf("recipients[%d].name", i), "recipient name is required")
		}
		recipients = append(recipients, models.CampaignRecipient{
			CampaignID:    campaign.ID,
			CustomerName:  name,
			CustomerEmail: optionalString(input.Email),
			CustomerPhone: optionalString(input.Phone),
			Status:        models.RecipientStatusPending,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&recipients).Error
	})
	if err != nil {
		return nil, dbError("add recipients", err)
	}
	return recipients, nil
}

// Dispatch sends the campaign to every pending recipient. Moving recipients to
// sent and bumping total_sent happen in one transaction, and only rows that are
// still pending at update time are counted, so repeated or overlapping calls
// never count a recipient twice.
func (s *CampaignService) Dispatch(ctx context.Context, userID, campaignID uint) (*DispatchResult, error) {
	campaign, err := findOwned[models.Campaign](ctx, s.db, userID, campaignID, ErrCampaignNotFound)
	if err != nil {
		return nil, err
	}

	sentAt := s.now().UTC()
	var dispatched []models.CampaignRecipient
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending []models.CampaignRecipient
		if err := tx.Where("campaign_id = ? AND status = ?", campaign.ID, models.RecipientStatusPending).
			Order("id ASC").
			Find(&pending).Error; err != nil {
			return err
		}

		for _, recipient := range pending {
			result := tx.Model(&models.CampaignRecipient{}).
				Where("id = ? AND status = ?", recipient.ID, models.RecipientStatusPending).
				Updates(map[string]interface{}{
					"status":  models.RecipientStatusSent,
					"sent_at": sentAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 1 {
				recipient.Status = models.RecipientStatusSent
				recipient.SentAt = &sentAt
				dispatched = append(dispatched, recipient)
			}
		}

		if len(dispatched) == 0 {
			return nil
		}
		return tx.Model(&models.Campaign{}).
			Where("id = ?", campaign.ID).
			Update("total_sent", gorm.Expr("total_sent + ?", len(dispatched))).Error
	})
	if err != nil {
		return nil, dbError("dispatch campaign", err)
	}

	log := logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"campaign_id": campaign.ID,
		"dispatched":  len(dispatched),
	})
	log.Info("campaign dispatched")
	s.deliver(ctx, *campaign, dispatched, log)

	if err := s.db.WithContext(ctx).First(campaign, campaign.ID).Error; err != nil {
		return nil, dbError("reload campaign", err)
	}
	return &DispatchResult{Dispatched: len(dispatched), Campaign: campaign}, nil
}

// RecordConversion marks a sent recipient as having left a review and bumps
// total_collected. Recording the same conversion twice has no further effect.
func (s *CampaignService) RecordConversion(ctx context.Context, userID, campaignID, recipientID uint) (*models.CampaignRecipient, error) {
	recipient, err := findOwnedRecipient(ctx, s.db, userID, campaignID, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient.Status != models.RecipientStatusSent {
		return nil, invalid("recipient", "recipient has not been sent a review request")
	}
	if recipient.ReviewSubmitted {
		return recipient, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CampaignRecipient{}).
			Where("id = ? AND status = ? AND review_submitted = ?", recipient.ID, models.RecipientStatusSent, false).
			Update("review_submitted", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Campaign{}).
			Where("id = ?", campaignID).
			Update("total_collected", gorm.Expr("total_collected + ?", 1)).Error
	})
	if err != nil {
		return nil, dbError("record conversion", err)
	}

	recipient.ReviewSubmitted = true
	return recipient, nil
}

// deliver hands sent recipients to the notifier after the transaction has
// committed. Delivery failures are logged and do not revert the sent state.
func (s *CampaignService) deliver(ctx context.Context, campaign models.Campaign, recipients []models.CampaignRecipient, log *logrus.Entry) {
	if s.notifier == nil {
		return
	}
	for _, recipient := range recipients {
		if campaign.Type != models.CampaignTypeEmail {
			continue
		}
		if err := s.notifier.SendReviewRequest(ctx, campaign, recipient); err != nil {
			log.WithError(err).WithField("recipient_id", recipient.ID).Warn("review request delivery failed")
		}
	}
}
