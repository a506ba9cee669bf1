package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a structured error code
type ErrorCode string

const (
	// Input errors
	ErrCodeParse        ErrorCode = "PARSE"
	ErrCodeValidation   ErrorCode = "VALIDATION"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Storage errors
	ErrCodeIO            ErrorCode = "IO"
	ErrCodeSerialization ErrorCode = "SERIALIZATION"

	ErrCodeInternal ErrorCode = "INTERNAL"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// HTTPCode returns the HTTP status the dashboard answers with for this error
func (e *AppError) HTTPCode() int {
	switch e.Code {
	case ErrCodeParse, ErrCodeValidation, ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates a new AppError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError
func Wrap(cause error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(cause error, code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// ParseError reports a malformed time string
func ParseError(input string) *AppError {
	return Newf(ErrCodeParse, "invalid time %q, expected MM:SS.mmm", input).
		WithDetail("input", input)
}

// ValidationError reports an ordering or bounds violation on a field
func ValidationError(field string, reason string) *AppError {
	return Newf(ErrCodeValidation, "validation failed for field '%s': %s", field, reason).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// InvalidInput reports a request the core cannot act on
func InvalidInput(format string, args ...interface{}) *AppError {
	return Newf(ErrCodeInvalidInput, format, args...)
}

// NotFound creates a not found error
func NotFound(resource string, id interface{}) *AppError {
	return Newf(ErrCodeNotFound, "%s not found", resource).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// IOError wraps a file system failure
func IOError(operation, path string, cause error) *AppError {
	return Wrapf(cause, ErrCodeIO, "%s %s failed", operation, path).
		WithDetail("operation", operation).
		WithDetail("path", path)
}

// SerializationError wraps a JSON encode/decode failure
func SerializationError(path string, cause error) *AppError {
	return Wrapf(cause, ErrCodeSerialization, "invalid JSON in %s", path).
		WithDetail("path", path)
}

// Is checks if an error, or any error it wraps, carries the given code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// GetHTTPCode extracts the HTTP status code from an error
func GetHTTPCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPCode()
	}
	return http.StatusInternalServerError
}

// Message returns the user-facing message of an error
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
