package domain

import (
	"errors"
	"fmt"
)

// ErrTemplateNotFound is returned when a template id cannot be found in the store.
var ErrTemplateNotFound = errors.New("template not found")

// ErrDraftNotFound is returned when no draft exists for a form.
var ErrDraftNotFound = errors.New("draft not found")

// ValidationError is a rejected transition with a user-facing reason.
// State is left unchanged so the caller can correct and retry.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Invalid builds a ValidationError from a format string.
func Invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a rejected-transition error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
