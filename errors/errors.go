package errors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrServiceUnavailable indicates a required service is unavailable
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrDatabaseOperation indicates a database operation failed
	ErrDatabaseOperation = errors.New("database operation failed")

	// ErrKnowledgeBase indicates the knowledge base could not be read or decoded
	ErrKnowledgeBase = errors.New("knowledge base unavailable")

	// ErrRegistry indicates the symptom registry is malformed
	ErrRegistry = errors.New("invalid symptom registry")
)

// WrapError wraps an error with context message and stack
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Join wraps a sentinel with a cause so both match errors.Is.
func Join(sentinel error, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// IsInvalidInput checks if error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsServiceUnavailable checks if error is a service unavailable error
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// IsKnowledgeBase checks if error came from loading the knowledge base
func IsKnowledgeBase(err error) bool {
	return errors.Is(err, ErrKnowledgeBase)
}

// IsRegistry checks if error came from parsing the symptom registry
func IsRegistry(err error) bool {
	return errors.Is(err, ErrRegistry)
}
