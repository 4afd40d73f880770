package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared across the application. Collaborator failures are
// wrapped into one of these so callers can branch with errors.Is.
var (
	// ErrValidation is returned when user input is rejected before any
	// collaborator is called.
	ErrValidation = errors.New("validation failed")

	// ErrGeneration is returned when the content generator fails or returns
	// an unusable result.
	ErrGeneration = errors.New("content generation failed")

	// ErrStore is returned when a persistence operation fails.
	ErrStore = errors.New("store operation failed")

	// ErrDecode is returned when stored analytics data cannot be decoded.
	ErrDecode = errors.New("malformed progress data")

	// ErrNotAuthenticated is returned when an operation requires a user and
	// none is present.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPathNotFound is returned when a learning path does not exist or
	// belongs to another user.
	ErrPathNotFound = errors.New("learning path not found")
)

// ValidationError describes a single rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

// Is reports ErrValidation as a match so callers need not know the concrete type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
