package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of every input validation failure.
// Use errors.Is(err, ErrValidation) to detect caller-fixable errors.
var ErrValidation = errors.New("validation failed")

// Post validation errors
var (
	ErrInvalidPostID   = errors.New("post ID must be positive")
	ErrEmptyTitle      = errors.New("post title cannot be empty")
	ErrEmptyContent    = errors.New("post content cannot be empty")
	ErrInvalidSlug     = errors.New("invalid slug format")
	ErrInvalidCategory = errors.New("invalid post category")
)

// Tag validation errors
var (
	ErrInvalidTagID   = errors.New("tag ID must be positive")
	ErrEmptyTagName   = errors.New("tag name cannot be empty")
	ErrTagNameTooLong = fmt.Errorf("tag name cannot exceed %d characters", MaxTagNameLength)
	ErrInvalidTagName = errors.New("invalid tag name format")
)

// Pagination errors
var (
	ErrInvalidLimit  = fmt.Errorf("limit must be between 1 and %d", MaxPageSize)
	ErrInvalidOffset = errors.New("offset cannot be negative")
)

// ValidationError describes which field was rejected and why.
// It matches both ErrValidation and the specific rule error via errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap exposes both the generic and the rule-specific error.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil || e.Err == ErrValidation {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

func invalid(field string, err error) *ValidationError {
	return NewValidationError(field, err.Error(), err)
}
