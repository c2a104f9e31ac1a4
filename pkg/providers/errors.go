package providers

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Sentinel errors for envelope validation.
var (
	// ErrMissingMethod indicates a JSON-RPC request without a method.
	ErrMissingMethod = errors.New("method is required")

	// ErrInvalidParams indicates params that are neither an array nor an object.
	ErrInvalidParams = errors.New("params must be an array or an object")
)

// UpstreamError represents a non-2xx answer from an RPC node.
// The raw body is kept so that it can be relayed to the caller.
type UpstreamError struct {
	// Endpoint is the host of the node that answered
	Endpoint string

	// StatusCode is the HTTP status code returned by the node
	StatusCode int

	// Body is the response body, possibly empty
	Body []byte
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %q returned status %d", e.Endpoint, e.StatusCode)
}

// TimeoutError represents an upstream call that did not complete within
// its bound.
type TimeoutError struct {
	// Endpoint is the host of the node that did not answer
	Endpoint string

	// Timeout is the configured timeout duration
	Timeout time.Duration

	// Cause is the underlying deadline error
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream %q request timeout after %s", e.Endpoint, e.Timeout)
}

// Unwrap returns the underlying error for error chain support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// TransportError represents a failure to reach the node at all:
// DNS resolution, connection refused, TLS handshake.
type TransportError struct {
	// Endpoint is the host that could not be reached
	Endpoint string

	// Cause is the underlying network error
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream %q transport error: %v", e.Endpoint, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ParseError represents a response that is not a usable JSON document.
type ParseError struct {
	// Endpoint is the host that returned the malformed response
	Endpoint string

	// RawResponse is a prefix of the body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("upstream %q response parse error: %v", e.Endpoint, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// IsTimeout reports whether err is a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// endpointHost reduces an endpoint URL to its host so that API keys carried
// in paths or query strings never end up in error messages.
func endpointHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "invalid-endpoint"
	}
	return u.Host
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
