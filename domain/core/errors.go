package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)

	// Validation errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidData          = errors.New("invalid observation data")
	ErrUnknownParameter     = errors.New("unknown parameter key")
	ErrInsufficientData     = errors.New("insufficient data for analysis")

	// Lifecycle errors
	ErrRunComplete   = errors.New("run already completed all iterations")
	ErrRunInProgress = errors.New("run already in progress")
)

// Error constructors with context
func NewSessionNotFoundError(id string) error {
	return fmt.Errorf("%w with id %s", ErrSessionNotFound, id)
}

// NewConfigurationError reports a caller contract violation on a configuration field.
func NewConfigurationError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfiguration, field, reason)
}

func NewDataError(index int, reason string) error {
	return fmt.Errorf("%w: point %d %s", ErrInvalidData, index, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrInvalidData) ||
		errors.Is(err, ErrUnknownParameter)
}
