package service

import (
	"errors"
	"fmt"
)

// ErrStorage marks failures of the ledger store. The operation that hit it was
// aborted and nothing was applied.
var ErrStorage = errors.New("ledger storage failure")

// ValidationError reports input rejected before any state change
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// storageError wraps err so that errors.Is(err, ErrStorage) holds while the
// original cause stays reachable.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrStorage, op, err)
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
