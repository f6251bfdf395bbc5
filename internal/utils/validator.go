package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/princeprakhar/reviewflow-backend/internal/models"
)

const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func IsValidPassword(password string) bool {
	return len(password) >= MinPasswordLength
}

func SanitizeString(input string) string {
	return strings.TrimSpace(input)
}

func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

// RegisterValidators adds the domain enum tags to gin's validator engine and
// makes field errors report JSON field names.
func RegisterValidators() error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}

	engine.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"review_status": func(fl validator.FieldLevel) bool {
			return models.ReviewStatus(fl.Field().String()).Valid()
		},
		"campaign_status": func(fl validator.FieldLevel) bool {
			return models.CampaignStatus(fl.Field().String()).Valid()
		},
		"rating_range": func(fl validator.FieldLevel) bool {
			_, err := models.ParseRatingRange(fl.Field().String())
			return err == nil
		},
	}
	for tag, rule := range rules {
		if err := engine.RegisterValidation(tag, rule); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}

// FormatBindingError turns a gin binding failure into a message naming the
// offending fields.
func FormatBindingError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "invalid request body"
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, describeFieldError(fieldErr))
	}
	return strings.Join(messages, "; ")
}

func describeFieldError(fieldErr validator.FieldError) string {
	field := fieldErr.Field()
	switch fieldErr.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fieldErr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fieldErr.Param())
	case "review_status":
		return field + " must be one of pending, responded, archived"
	case "campaign_status":
		return field + " must be one of active, paused, completed"
	case "rating_range":
		return field + " must be one of 1-3, 4-5, 1-2, 3, 5"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fieldErr.Tag())
	}
}
