package config

import (
	"errors"
	"fmt"
)

// ErrValidationFailed is matched by every ValidationError.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError describes one rejected setting.
type ValidationError struct {
	Path    string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Is reports ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
