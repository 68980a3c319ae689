package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a missing entity
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found with ID: %s", e.Entity, e.ID)
}

// ErrDocumentNotFound is returned when a stored document does not exist
func ErrDocumentNotFound(id string) error {
	return &ErrNotFound{Entity: "document", ID: id}
}

// IsNotFound reports whether err wraps an ErrNotFound
func IsNotFound(err error) bool {
	var nf *ErrNotFound
	return errors.As(err, &nf)
}

// ValidationError represents an error that occurs due to invalid input or parameters
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error with the given message
func NewValidationError(message string) error {
	return ValidationError{
		Message: message,
	}
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ErrInputTooLarge is returned when markup exceeds the configured size limit
type ErrInputTooLarge struct {
	Size  int64
	Limit int64
}

func (e *ErrInputTooLarge) Error() string {
	return fmt.Sprintf("input of %d bytes exceeds the %d byte limit", e.Size, e.Limit)
}
