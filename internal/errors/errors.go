// Package errors provides the closed set of typed errors used across the
// credential and publish core, with HTTP status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeConfig indicates missing or malformed server configuration (HTTP 500, not retryable)
	TypeConfig ErrorType = "config"
	// TypeDecryption indicates a malformed, tampered, or wrong-key ciphertext (HTTP 500)
	TypeDecryption ErrorType = "decryption"
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeNotFound indicates resource not found (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeUnauthorized indicates a missing or invalid caller identity (HTTP 401)
	TypeUnauthorized ErrorType = "unauthorized"
	// TypeAuthExpired indicates the stored provider credential was rejected and must be reconnected (HTTP 401)
	TypeAuthExpired ErrorType = "auth_expired"
	// TypeUpstream indicates a non-2xx response from the review platform; carries the upstream status
	TypeUpstream ErrorType = "upstream"
	// TypeTimeout indicates an internally triggered request timeout (HTTP 408)
	TypeTimeout ErrorType = "timeout"
	// TypeRateLimited indicates the per-organization publish budget is exhausted (HTTP 429)
	TypeRateLimited ErrorType = "rate_limited"
	// TypeInternal indicates any other server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
)

// Error represents a structured error with type, message, and context.
// Status carries the upstream HTTP status for upstream errors; zero otherwise.
type Error struct {
	Type    ErrorType
	Message string
	Status  int
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
// Upstream errors answer with the status the provider returned.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeUnauthorized, TypeAuthExpired:
		return http.StatusUnauthorized
	case TypeTimeout:
		return http.StatusRequestTimeout
	case TypeRateLimited:
		return http.StatusTooManyRequests
	case TypeUpstream:
		if e.Status != 0 {
			return e.Status
		}
		return http.StatusBadGateway
	case TypeConfig, TypeDecryption, TypeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ConfigError creates a new configuration error (HTTP 500).
func ConfigError(message string) *Error {
	return &Error{
		Type:    TypeConfig,
		Message: message,
		Context: make(map[string]any),
	}
}

// DecryptionError creates a new decryption error (HTTP 500).
// The message never reveals whether the cause was a malformed blob,
// tampering, or a wrong key.
func DecryptionError(cause error) *Error {
	return &Error{
		Type:    TypeDecryption,
		Message: "failed to decrypt secret",
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// ValidationError creates a new validation error (HTTP 400).
func ValidationError(message string) *Error {
	return &Error{
		Type:    TypeValidation,
		Message: message,
		Context: make(map[string]any),
	}
}

// NotFoundError creates a new not-found error (HTTP 404).
func NotFoundError(message string) *Error {
	return &Error{
		Type:    TypeNotFound,
		Message: message,
		Context: make(map[string]any),
	}
}

// UnauthorizedError creates a new unauthorized error (HTTP 401).
func UnauthorizedError(message string) *Error {
	return &Error{
		Type:    TypeUnauthorized,
		Message: message,
		Context: make(map[string]any),
	}
}

// AuthExpiredError indicates the stored refresh credential was rejected by
// the provider. Callers should prompt the user to reconnect.
func AuthExpiredError(cause error) *Error {
	return &Error{
		Type:    TypeAuthExpired,
		Message: "provider credential expired or revoked, reconnect required",
		Status:  http.StatusUnauthorized,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// UpstreamError creates an error carrying a non-2xx provider response verbatim.
func UpstreamError(status int, message string) *Error {
	return &Error{
		Type:    TypeUpstream,
		Message: message,
		Status:  status,
		Context: make(map[string]any),
	}
}

// TimeoutError creates a request-timeout error (HTTP 408) for an internally
// triggered abort, distinct from caller cancellation which is never wrapped.
func TimeoutError(message string) *Error {
	return &Error{
		Type:    TypeTimeout,
		Message: message,
		Status:  http.StatusRequestTimeout,
		Context: make(map[string]any),
	}
}

// RateLimitedError creates a new rate-limited error (HTTP 429).
func RateLimitedError(message string) *Error {
	return &Error{
		Type:    TypeRateLimited,
		Message: message,
		Context: make(map[string]any),
	}
}

// InternalError creates a new internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return &Error{
		Type:    TypeInternal,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithField is an alias for WithContext (chainable).
func (e *Error) WithField(key string, value any) *Error {
	return e.WithContext(key, value)
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// AsStructuredError converts any error into a structured Error.
// If err is already an *Error, returns it unchanged.
// Otherwise wraps it as an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal server error", err)
}
