package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/princeprakhar/reviewflow-backend/internal/models"
	"github.com/princeprakhar/reviewflow-backend/internal/utils"
	"github.com/princeprakhar/reviewflow-backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	DefaultReviewPageSize = 50
	MaxReviewPageSize     = 200
)

// reviewDateLayouts are tried in order; date-only values are midnight UTC.
var reviewDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type ReviewService struct {
	db         *gorm.DB
	templates  *TemplateService
	automation *AutomationService
	notifier   Notifier
	now        func() time.Time
}

func NewReviewService(db *gorm.DB, templates *TemplateService, automation *AutomationService, notifier Notifier) *ReviewService {
	return &ReviewService{
		db:         db,
		templates:  templates,
		automation: automation,
		notifier:   notifier,
		now:        time.Now,
	}
}

type IngestReviewRequest struct {
	ExternalID  string     `json:"review_id"`
	AuthorName  string     `json:"author_name" binding:"required"`
	AuthorEmail string     `json:"author_email" binding:"omitempty,email"`
	Rating      int        `json:"rating" binding:"required,min=1,max=5"`
	ReviewText  string     `json:"review_text"`
	ReviewDate  string     `json:"review_date"`
	Source      string     `json:"source"`
}

type ReviewFilter struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

type RespondRequest struct {
	ResponseText string `json:"response_text" binding:"required"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required,review_status"`
}

type AutoResponse struct {
	ResponseText string         `json:"response_text"`
	Review       *models.Review `json:"review"`
}

func (s *ReviewService) ListReviews(ctx context.Context, userID uint, filter ReviewFilter) ([]models.Review, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)

	if strings.TrimSpace(filter.Status) != "" {
		status, err := models.ParseReviewStatus(filter.Status)
		if err != nil {
			return nil, invalid("status", err.Error())
		}
		query = query.Where("status = ?", status)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultReviewPageSize
	}
	if limit > MaxReviewPageSize {
		limit = MaxReviewPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	reviews := make([]models.Review, 0)
	if err := query.
		Order("review_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error; err != nil {
		return nil, dbError("list reviews", err)
	}
	return reviews, nil
}

func (s *ReviewService) GetReview(ctx context.Context, userID, reviewID uint) (*models.Review, error) {
	return findOwned[models.Review](ctx, s.db, userID, reviewID, ErrReviewNotFound)
}

// IngestReview stores a new review in the pending state.
func (s *ReviewService) IngestReview(ctx context.Context, userID uint, req IngestReviewRequest) (*models.Review, error) {
	authorName := utils.SanitizeString(req.AuthorName)
	if authorName == "" {
		return nil, invalid("author_name", "author name is required")
	}
	if !utils.IsValidRating(req.Rating) {
		return nil, invalid("rating", "rating must be between 1 and 5")
	}

	review := models.Review{
		UserID:      userID,
		ExternalID:  optionalString(req.ExternalID),
		AuthorName:  authorName,
		AuthorEmail: optionalString(req.AuthorEmail),
		Rating:      req.Rating,
		ReviewText:  optionalString(req.ReviewText),
		ReviewDate:  s.now().UTC(),
		Source:      models.DefaultReviewSource,
		Status:      models.ReviewStatusPending,
	}
	if strings.TrimSpace(req.ReviewDate) != "" {
		reviewDate, err := parseReviewDate(req.ReviewDate)
		if err != nil {
			return nil, err
		}
		review.ReviewDate = reviewDate
	}
	if source := utils.SanitizeString(req.Source); source != "" {
		review.Source = strings.ToLower(source)
	}
	if review.AuthorEmail != nil && !utils.IsValidEmail(*review.AuthorEmail) {
		return nil, invalid("author_email", "invalid email format")
	}

	if review.ExternalID != nil {
		var existing int64
		if err := s.db.WithContext(ctx).Model(&models.Review{}).
			Where("user_id = ? AND review_id = ?", userID, *review.ExternalID).
			Count(&existing).Error; err != nil {
			return nil, dbError("check external review id", err)
		}
		if existing > 0 {
			return nil, ErrConflict
		}
	}

	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, dbError("create review", err)
	}

	s.alertIfNegative(ctx, review)
	return &review, nil
}

// Respond records a manual response. Responding again overwrites the previous
// response, and archived reviews accept responses too.
func (s *ReviewService) Respond(ctx context.Context, userID, reviewID uint, text string) (*models.Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("response_text", "response text is required")
	}

	review, err := s.GetReview(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.applyResponse(ctx, review, text); err != nil {
		return nil, err
	}
	return review, nil
}

// AutoRespond answers the review with the owner's default template for the
// review's rating bucket and returns the text that was used.
func (s *ReviewService) AutoRespond(ctx context.Context, userID, reviewID uint) (*AutoResponse, error) {
	review, err := s.GetReview(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}

	templates, err := s.templates.DefaultTemplates(ctx, userID)
	if err != nil {
		return nil, err
	}
	text := SelectResponse(review.Rating, templates)

	if err := s.applyResponse(ctx, review, text); err != nil {
		return nil, err
	}
	return &AutoResponse{ResponseText: text, Review: review}, nil
}

// SetStatus moves a review to any lifecycle state. Regressions such as
// responded -> pending are allowed. The responded flag follows the status, and
// the stored response text is kept so the review can be marked responded again.
func (s *ReviewService) SetStatus(ctx context.Context, userID, reviewID uint, value string) (*models.Review, error) {
	status, err := models.ParseReviewStatus(value)
	if err != nil {
		return nil, invalid("status", err.Error())
	}

	review, err := s.GetReview(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}
	responded := status == models.ReviewStatusResponded
	if responded && (review.ResponseText == nil || review.ResponseDate == nil) {
		return nil, invalid("status", "review has no response yet")
	}

	updates := map[string]interface{}{
		"status":    status,
		"responded": responded,
	}
	if err := s.db.WithContext(ctx).Model(review).Updates(updates).Error; err != nil {
		return nil, dbError("update review status", err)
	}
	review.Status = status
	review.Responded = responded
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", reviewID, userID).
		Delete(&models.Review{})
	if result.Error != nil {
		return dbError("delete review", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (s *ReviewService) applyResponse(ctx context.Context, review *models.Review, text string) error {
	respondedAt := s.now().UTC()
	updates := map[string]interface{}{
		"responded":     true,
		"response_text": text,
		"response_date": respondedAt,
		"status":        models.ReviewStatusResponded,
	}
	if err := s.db.WithContext(ctx).Model(review).Updates(updates).Error; err != nil {
		return dbError("record review response", err)
	}

	review.Responded = true
	review.ResponseText = &text
	review.ResponseDate = &respondedAt
	review.Status = models.ReviewStatusResponded
	return nil
}

func (s *ReviewService) alertIfNegative(ctx context.Context, review models.Review) {
	if s.automation == nil || s.notifier == nil {
		return
	}

	log := logger.WithFields(logrus.Fields{"user_id": review.UserID, "review_id": review.ID})
	settings, err := s.automation.GetSettings(ctx, review.UserID)
	if err != nil {
		log.WithError(err).Error("load automation settings for negative alert")
		return
	}
	if !settings.ShouldAlert(review.Rating) {
		return
	}

	var owner models.User
	if err := s.db.WithContext(ctx).First(&owner, review.UserID).Error; err != nil {
		log.WithError(err).Error("load review owner for negative alert")
		return
	}
	if err := s.notifier.SendNegativeReviewAlert(ctx, owner, review); err != nil {
		log.WithError(err).Error("send negative review alert")
	}
}

func parseReviewDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range reviewDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, invalid("review_date", "review date must be RFC3339 or YYYY-MM-DD")
}

func optionalString(value string) *string {
	trimmed := utils.SanitizeString(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
