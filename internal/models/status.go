package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidReviewStatus   = errors.New("invalid review status")
	ErrInvalidCampaignStatus = errors.New("invalid campaign status")
	ErrInvalidCampaignType   = errors.New("invalid campaign type")
	ErrInvalidRatingRange    = errors.New("invalid rating range")
	ErrInvalidPlan           = errors.New("invalid subscription plan")
)

// ReviewStatus is the lifecycle state of a review.
type ReviewStatus string

const (
	ReviewStatusPending   ReviewStatus = "pending"
	ReviewStatusResponded ReviewStatus = "responded"
	ReviewStatusArchived  ReviewStatus = "archived"
)

var reviewStatuses = []ReviewStatus{ReviewStatusPending, ReviewStatusResponded, ReviewStatusArchived}

func ParseReviewStatus(value string) (ReviewStatus, error) {
	status := ReviewStatus(strings.TrimSpace(value))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidReviewStatus, value)
	}
	return status, nil
}

func (s ReviewStatus) Valid() bool {
	for _, candidate := range reviewStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// CampaignStatus is changed only by the owner; there is no automatic completion.
type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

var campaignStatuses = []CampaignStatus{CampaignStatusActive, CampaignStatusPaused, CampaignStatusCompleted}

func ParseCampaignStatus(value string) (CampaignStatus, error) {
	status := CampaignStatus(strings.TrimSpace(value))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCampaignStatus, value)
	}
	return status, nil
}

func (s CampaignStatus) Valid() bool {
	for _, candidate := range campaignStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// CampaignType is the delivery channel of a campaign.
type CampaignType string

const (
	CampaignTypeEmail CampaignType = "email"
	CampaignTypeSMS   CampaignType = "sms"
)

func ParseCampaignType(value string) (CampaignType, error) {
	campaignType := CampaignType(strings.ToLower(strings.TrimSpace(value)))
	switch campaignType {
	case CampaignTypeEmail, CampaignTypeSMS:
		return campaignType, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCampaignType, value)
}

// RecipientStatus only moves forward: pending -> sent. A sent recipient whose
// ReviewSubmitted flag is set counts as converted.
type RecipientStatus string

const (
	RecipientStatusPending RecipientStatus = "pending"
	RecipientStatusSent    RecipientStatus = "sent"
)

// RatingRange tags a response template with the ratings it is meant for.
// Only the two buckets take part in automatic selection.
type RatingRange string

const (
	RatingRangeLow  RatingRange = "1-3"
	RatingRangeHigh RatingRange = "4-5"

	RatingRangeNegative  RatingRange = "1-2"
	RatingRangeNeutral   RatingRange = "3"
	RatingRangeExcellent RatingRange = "5"
)

var ratingRanges = []RatingRange{
	RatingRangeLow,
	RatingRangeHigh,
	RatingRangeNegative,
	RatingRangeNeutral,
	RatingRangeExcellent,
}

func ParseRatingRange(value string) (RatingRange, error) {
	ratingRange := RatingRange(strings.TrimSpace(value))
	for _, candidate := range ratingRanges {
		if ratingRange == candidate {
			return ratingRange, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRatingRange, value)
}

// BucketForRating maps a rating to the bucket used for template selection.
func BucketForRating(rating int) RatingRange {
	if rating >= 4 {
		return RatingRangeHigh
	}
	return RatingRangeLow
}

type SubscriptionPlan string

const (
	PlanFree       SubscriptionPlan = "free"
	PlanBasic      SubscriptionPlan = "basic"
	PlanPro        SubscriptionPlan = "pro"
	PlanEnterprise SubscriptionPlan = "enterprise"
)

func ParseSubscriptionPlan(value string) (SubscriptionPlan, error) {
	plan := SubscriptionPlan(strings.ToLower(strings.TrimSpace(value)))
	switch plan {
	case PlanFree, PlanBasic, PlanPro, PlanEnterprise:
		return plan, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPlan, value)
}
