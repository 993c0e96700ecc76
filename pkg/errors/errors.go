package errors

import (
	"errors"
	"fmt"
)

// Domain error types for business logic

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates insufficient permissions
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates action is forbidden
	ErrForbidden = errors.New("forbidden")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// Upstream API errors

var (
	// ErrUpstreamUnavailable indicates the market-data or news API is unreachable
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUpstreamStatus indicates the upstream API returned a non-success status
	ErrUpstreamStatus = errors.New("upstream returned error status")

	// ErrRateLimitExceeded indicates upstream API rate limit exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Cache errors

var (
	// ErrCacheMiss indicates the requested key is absent or expired
	ErrCacheMiss = errors.New("cache miss")
)

// UpstreamError carries the status code returned by an upstream API so
// proxy handlers can propagate it verbatim.
type UpstreamError struct {
	StatusCode int
	Status     string
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: %s", e.Status)
}

// Unwrap makes UpstreamError match ErrUpstreamStatus via errors.Is
func (e *UpstreamError) Unwrap() error {
	return ErrUpstreamStatus
}

// NewUpstreamError creates an error for an upstream non-success response
func NewUpstreamError(statusCode int, status string) *UpstreamError {
	return &UpstreamError{StatusCode: statusCode, Status: status}
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
