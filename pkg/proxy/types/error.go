package types

import (
	"encoding/json"
	"net/http"
)

// StatusClientClosedRequest is the non-standard status recorded when the
// caller disconnected before a response was written.
const StatusClientClosedRequest = 499

// ErrorResponse is the body of every error answered by the gateway.
//
//	{"error": "Upstream RPC request timed out", "kind": "upstream_timeout", "request_id": "..."}
type ErrorResponse struct {
	// Error is a human-readable message.
	Error string `json:"error"`

	// Kind classifies the error. See the Kind* constants.
	Kind string `json:"kind,omitempty"`

	// Upstream is the body returned by a failing upstream node, embedded
	// raw when it is JSON and as a string otherwise.
	Upstream json.RawMessage `json:"upstream,omitempty"`

	// RetryAfter is the number of seconds until the caller's quota resets.
	RetryAfter int `json:"retry_after,omitempty"`

	// RequestID correlates the response with the gateway's logs.
	RequestID string `json:"request_id,omitempty"`

	// Status is the HTTP status code the response is written with.
	Status int `json:"-"`
}

// Error kinds.
const (
	// KindClientError indicates a malformed request (400).
	KindClientError = "client_error"

	// KindRateLimited indicates the caller's quota is exhausted (429).
	KindRateLimited = "rate_limited"

	// KindUpstreamTimeout indicates the upstream did not answer in time (504).
	KindUpstreamTimeout = "upstream_timeout"

	// KindUpstreamError indicates the upstream answered with a failure. The
	// upstream status is passed through.
	KindUpstreamError = "upstream_error"

	// KindConfigurationError indicates required configuration is absent (500).
	KindConfigurationError = "configuration_error"

	// KindInternalError indicates an unexpected failure (500).
	KindInternalError = "internal_error"

	// KindClientClosed indicates the caller went away (499).
	KindClientClosed = "client_closed"
)

// NewErrorResponse creates an error response.
func NewErrorResponse(status int, kind, message string) *ErrorResponse {
	return &ErrorResponse{Error: message, Kind: kind, Status: status}
}

// NewClientError creates a 400 response.
func NewClientError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, KindClientError, message)
}

// NewInternalError creates a 500 response.
func NewInternalError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusInternalServerError, KindInternalError, message)
}

// NewGatewayTimeoutError creates a 504 response.
func NewGatewayTimeoutError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusGatewayTimeout, KindUpstreamTimeout, message)
}

// NewRateLimitedError creates a 429 response.
func NewRateLimitedError(retryAfter int) *ErrorResponse {
	resp := NewErrorResponse(http.StatusTooManyRequests, KindRateLimited, "Too many requests, please try again later.")
	resp.RetryAfter = retryAfter
	return resp
}

// HTTPStatusCode returns the status the response is written with,
// defaulting to 500.
func (e *ErrorResponse) HTTPStatusCode() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// WithUpstreamBody embeds body under "upstream". Bodies that are not JSON
// are embedded as a JSON string.
func (e *ErrorResponse) WithUpstreamBody(body []byte) *ErrorResponse {
	if len(body) == 0 {
		return e
	}
	if json.Valid(body) {
		e.Upstream = json.RawMessage(body)
		return e
	}
	if s, err := json.Marshal(string(body)); err == nil {
		e.Upstream = s
	}
	return e
}
