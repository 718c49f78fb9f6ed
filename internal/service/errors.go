package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced todo, template, comment,
	// user or notification does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState is returned when an operation does not apply to the
	// current state of the todo, e.g. stopping a timer that is not running.
	ErrInvalidState = errors.New("invalid state transition")
	// ErrConflict is returned when a unique name is already taken.
	ErrConflict = errors.New("conflict")
	// ErrRecurrenceEnded is wrapped into ErrInvalidState when the next
	// occurrence would fall after the recurrence end date.
	ErrRecurrenceEnded = errors.New("recurrence has ended")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(kind string, id uint) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}
