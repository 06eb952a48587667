package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched (errors.Is) by every malformed or out-of-domain input error.
var ErrInvalidInput = errors.New("invalid input")

// InputError reports which field was rejected and why.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// InvalidField builds an InputError for field with a formatted reason.
func InvalidField(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidInput reports whether err is (or wraps) an input validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
