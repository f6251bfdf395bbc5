package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrDatabaseQuery = errors.New("database query failed")
	ErrUnauthorized  = errors.New("invalid credentials")

	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrReviewNotFound    = fmt.Errorf("review %w", ErrNotFound)
	ErrTemplateNotFound  = fmt.Errorf("template %w", ErrNotFound)
	ErrCampaignNotFound  = fmt.Errorf("campaign %w", ErrNotFound)
	ErrRecipientNotFound = fmt.Errorf("recipient %w", ErrNotFound)
)

// ValidationError names the input field that was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func dbError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDatabaseQuery, operation, err)
}

// lookupError converts a point-lookup failure into notFound when the row is
// absent and a database error otherwise.
func lookupError(operation string, err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return dbError(operation, err)
}
