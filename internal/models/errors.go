package models

import (
	"fmt"

	"github.com/desertthunder/likesync/internal/shared"
)

// ValidationError reports malformed input rejected before any computation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s %s", shared.ErrInvalidInput, e.Field, e.Reason)
}

// Unwrap lets callers match any validation failure with errors.Is(err, shared.ErrInvalidInput).
func (e *ValidationError) Unwrap() error {
	return shared.ErrInvalidInput
}

// NewValidationError builds a [ValidationError] for field with a formatted reason.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
