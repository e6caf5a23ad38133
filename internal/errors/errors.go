package errors

import (
	"errors"
	"fmt"
	"strconv"
)

// CCError is the structured error type for ccindex.
// Category, severity and retryability are derived from Code.
type CCError struct {
	Code       string
	Message    string
	Category   Category
	Severity   Severity
	Details    map[string]string
	Cause      error
	Retryable  bool
	Suggestion string
}

// Error implements the error interface.
func (e *CCError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CCError) Unwrap() error {
	return e.Cause
}

// Is matches another CCError by code.
func (e *CCError) Is(target error) bool {
	if t, ok := target.(*CCError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *CCError) WithDetail(key, value string) *CCError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion sets the hint shown to the user.
func (e *CCError) WithSuggestion(suggestion string) *CCError {
	e.Suggestion = suggestion
	return e
}

// New creates a CCError with the given code and message.
func New(code string, message string, cause error) *CCError {
	return &CCError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a CCError from an existing error.
func Wrap(code string, err error) *CCError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration error.
func ConfigError(message string, cause error) *CCError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError creates an input validation error.
func ValidationError(message string, cause error) *CCError {
	return New(ErrCodeInvalidInput, message, cause)
}

// componentMessages holds the default message per component failure class.
var componentMessages = map[string]string{
	ErrCodeExtractionFailed: "descriptor extraction failed",
	ErrCodePerceptionFailed: "perception failed",
	ErrCodeIdentityMismatch: "definition identity does not match its key",
	ErrCodeChunkFailed:      "chunk aborted before completion",
	ErrCodeNotFound:         "id not in definition store",
}

// ComponentError describes why one component contributed nothing (or, for
// an identity mismatch on the single-worker path, contributed with a warning).
// The component id is kept as the "component" detail.
func ComponentError(code, id string, cause error) *CCError {
	msg, ok := componentMessages[code]
	if !ok {
		msg = "component failed"
	}
	return New(code, msg, cause).WithDetail("component", id)
}

// InterruptedError reports a build that stopped with ids left unattempted.
// Its result is never written to the cache.
func InterruptedError(index string, unattempted int, cause error) *CCError {
	return New(ErrCodeChunkFailed, index+" index build interrupted, export skipped", cause).
		WithDetail("index", index).
		WithDetail("unattempted", strconv.Itoa(unattempted)).
		WithSuggestion("Run the build again to completion")
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var ce *CCError
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// GetCode extracts the error code, or "" when err is not a CCError.
func GetCode(err error) string {
	var ce *CCError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// GetCategory extracts the category from a CCError.
func GetCategory(err error) Category {
	var ce *CCError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ""
}
