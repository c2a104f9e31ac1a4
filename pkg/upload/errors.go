package upload

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyPayload indicates an artifact without content.
	ErrEmptyPayload = errors.New("upload payload is empty")

	// ErrPayloadTooLarge indicates an artifact above the configured size limit.
	ErrPayloadTooLarge = errors.New("upload payload too large")
)

// ConfigurationError reports storage settings that are missing. It is
// returned before any network call is made.
type ConfigurationError struct {
	// Missing lists the absent settings (e.g., "access key", "bucket")
	Missing []string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("storage backend not configured: missing %s", strings.Join(e.Missing, ", "))
}

// BackendError represents a failed write to the storage backend.
type BackendError struct {
	// StatusCode is the backend's HTTP status, or a gateway status (502, 504)
	// when the backend gave no usable answer
	StatusCode int

	// Message is the backend's error message, safe to show to clients
	Message string

	// Cause is the underlying SDK error
	Cause error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("storage backend error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *BackendError) Unwrap() error {
	return e.Cause
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
