package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseReviewStatus(t *testing.T) {
	for _, value := range []string{"pending", "responded", "archived", " archived "} {
		status, err := ParseReviewStatus(value)
		require.NoError(t, err, value)
		require.True(t, status.Valid())
	}

	_, err := ParseReviewStatus("deleted")
	require.ErrorIs(t, err, ErrInvalidReviewStatus)

	_, err = ParseReviewStatus("")
	require.ErrorIs(t, err, ErrInvalidReviewStatus)
}

func TestParseCampaignStatus(t *testing.T) {
	status, err := ParseCampaignStatus("paused")
	require.NoError(t, err)
	require.Equal(t, CampaignStatusPaused, status)

	_, err = ParseCampaignStatus("running")
	require.ErrorIs(t, err, ErrInvalidCampaignStatus)
}

func TestParseCampaignTypeNormalizesCase(t *testing.T) {
	campaignType, err := ParseCampaignType("Email")
	require.NoError(t, err)
	require.Equal(t, CampaignTypeEmail, campaignType)

	_, err = ParseCampaignType("fax")
	require.ErrorIs(t, err, ErrInvalidCampaignType)
}

func TestBucketForRating(t *testing.T) {
	testCases := []struct {
		rating int
		bucket RatingRange
	}{
		{rating: 1, bucket: RatingRangeLow},
		{rating: 2, bucket: RatingRangeLow},
		{rating: 3, bucket: RatingRangeLow},
		{rating: 4, bucket: RatingRangeHigh},
		{rating: 5, bucket: RatingRangeHigh},
	}
	for _, testCase := range testCases {
		require.Equal(t, testCase.bucket, BucketForRating(testCase.rating), "rating %d", testCase.rating)
	}
}

func TestParseRatingRangeAcceptsFinerRanges(t *testing.T) {
	for _, value := range []string{"1-3", "4-5", "1-2", "3", "5"} {
		_, err := ParseRatingRange(value)
		require.NoError(t, err, value)
	}

	_, err := ParseRatingRange("0-9")
	require.ErrorIs(t, err, ErrInvalidRatingRange)
}

func TestParseSubscriptionPlan(t *testing.T) {
	plan, err := ParseSubscriptionPlan("PRO")
	require.NoError(t, err)
	require.Equal(t, PlanPro, plan)

	_, err = ParseSubscriptionPlan("platinum")
	require.ErrorIs(t, err, ErrInvalidPlan)
}

func TestAutomationSettingsShouldAlert(t *testing.T) {
	settings := DefaultAutomationSettings(1)
	require.True(t, settings.ShouldAlert(3))
	require.True(t, settings.ShouldAlert(1))
	require.False(t, settings.ShouldAlert(4))

	settings.NegativeAlertEnabled = false
	require.False(t, settings.ShouldAlert(1))
}

func TestUserPasswordHashing(t *testing.T) {
	user := User{Email: "owner@example.com", Password: "secret-pass", Name: "Owner"}
	require.NoError(t, user.BeforeCreate(nil))
	require.NotEqual(t, "secret-pass", user.Password)
	require.True(t, user.CheckPassword("secret-pass"))
	require.False(t, user.CheckPassword("wrong-pass"))
	require.Equal(t, PlanFree, user.SubscriptionPlan)

	require.NoError(t, user.UpdatePassword("another-pass"))
	require.True(t, user.CheckPassword("another-pass"))
}
