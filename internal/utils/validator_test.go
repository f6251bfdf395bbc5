package utils

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/require"
)

type validatedRequest struct {
	Name        string `json:"name" binding:"required"`
	Status      string `json:"status" binding:"omitempty,review_status"`
	RatingRange string `json:"rating_range" binding:"omitempty,rating_range"`
	Campaign    string `json:"campaign_status" binding:"omitempty,campaign_status"`
}

func TestRegisterValidatorsAndFormatBindingError(t *testing.T) {
	require.NoError(t, RegisterValidators())

	require.NoError(t, binding.Validator.ValidateStruct(&validatedRequest{
		Name: "ok", Status: "archived", RatingRange: "4-5", Campaign: "paused",
	}))

	err := binding.Validator.ValidateStruct(&validatedRequest{Status: "deleted", RatingRange: "2-4", Campaign: "running"})
	require.Error(t, err)

	message := FormatBindingError(err)
	require.Contains(t, message, "name is required")
	require.Contains(t, message, "status must be one of pending, responded, archived")
	require.Contains(t, message, "rating_range must be one of")
	require.Contains(t, message, "campaign_status must be one of active, paused, completed")
}

func TestFormatBindingErrorFallsBackForMalformedBodies(t *testing.T) {
	require.Equal(t, "invalid request body", FormatBindingError(errors.New("unexpected EOF")))
}

func TestPasswordAndEmailRules(t *testing.T) {
	require.True(t, IsValidPassword("secret"))
	require.False(t, IsValidPassword("short"))
	require.True(t, IsValidEmail("owner@example.com"))
	require.False(t, IsValidEmail("owner@"))
	require.Equal(t, "trimmed", SanitizeString("  trimmed \n"))
}
