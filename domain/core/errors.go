package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrDateParse        = errors.New("date parse error")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidField     = errors.New("invalid field value")

	// Artifact errors
	ErrModelUnavailable = errors.New("model unavailable")
	ErrNotFound         = errors.New("resource not found")
	ErrHashMismatch     = errors.New("hash mismatch")
	ErrSchemaMismatch   = errors.New("feature schema mismatch")
)

// DateParseError reports a date field that matches none of the accepted layouts.
type DateParseError struct {
	Field string
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("%v: %s %q does not match any accepted format", ErrDateParse, e.Field, e.Value)
}

func (e *DateParseError) Is(target error) bool { return target == ErrDateParse }

// InvalidDateRangeError reports a deadline that is not strictly after the launch date.
type InvalidDateRangeError struct {
	Launched string
	Deadline string
	Days     int
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("%v: deadline %s is %d day(s) after launch %s, must be > 0",
		ErrInvalidDateRange, e.Deadline, e.Days, e.Launched)
}

func (e *InvalidDateRangeError) Is(target error) bool { return target == ErrInvalidDateRange }

// MissingFieldError names the required raw field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// InvalidFieldError reports a present field with an out-of-range value.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidField, e.Field, e.Reason)
}

func (e *InvalidFieldError) Is(target error) bool { return target == ErrInvalidField }

// ModelUnavailableError wraps any failure to load the classifier or rate tables.
type ModelUnavailableError struct {
	Artifact string
	Cause    error
}

func (e *ModelUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s: %v", ErrModelUnavailable, e.Artifact, e.Cause)
	}
	return fmt.Sprintf("%v: %s", ErrModelUnavailable, e.Artifact)
}

func (e *ModelUnavailableError) Is(target error) bool { return target == ErrModelUnavailable }

func (e *ModelUnavailableError) Unwrap() error { return e.Cause }

// Error constructors with context
func NewMissingFieldError(field string) error {
	return &MissingFieldError{Field: field}
}

func NewModelUnavailableError(artifact string, cause error) error {
	return &ModelUnavailableError{Artifact: artifact, Cause: cause}
}

func NewNotFoundError(resource string, name string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, resource, name)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrDateParse) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidField)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsModelUnavailable(err error) bool {
	return errors.Is(err, ErrModelUnavailable)
}
