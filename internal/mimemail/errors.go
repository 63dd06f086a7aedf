package mimemail

import (
	"errors"
	"fmt"
)

// ErrMissingField is matched by every MissingFieldError via errors.Is.
var ErrMissingField = errors.New("missing required field")

// MissingFieldError reports a draft that lacks one of to, subject or body.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}
