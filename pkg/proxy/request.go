package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/Herocku2/solana-token-creatorf/pkg/providers"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy/types"
)

const (
	// DefaultMaxBodyBytes is the request body limit when none is configured (1MB).
	DefaultMaxBodyBytes = 1 << 20

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"
)

// RequestError represents a request parsing or validation error.
type RequestError struct {
	// Message is returned to the caller.
	Message string

	// Param names the offending field, if any.
	Param string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts a RequestError to a 400 response.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewClientError(e.Message)
}

// ReadJSON decodes the request body into v. Bodies larger than maxBytes,
// empty bodies and malformed JSON are reported as *RequestError.
func ReadJSON(r *http.Request, maxBytes int64, v any) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", maxBytes),
			Param:   "body",
		}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &RequestError{Message: "request body is empty", Param: "body"}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Param:   "body",
		}
	}
	return nil
}

// ParseRPCRequest reads a fixed-network RPC call and normalizes its
// envelope.
func ParseRPCRequest(r *http.Request, maxBytes int64) (*providers.Request, error) {
	var body types.RPCRequest
	if err := ReadJSON(r, maxBytes, &body); err != nil {
		return nil, err
	}

	req := &providers.Request{
		JSONRPC: body.JSONRPC,
		ID:      body.ID,
		Method:  body.Method,
		Params:  body.Params,
	}
	if err := req.Normalize(); err != nil {
		return nil, envelopeError(err)
	}
	return req, nil
}

// ParseGenericRequest reads a generic RPC call. The endpoint must be an
// absolute http(s) URL and, when allowedHosts is non-empty, its host must be
// listed. The returned request always carries id 1.
func ParseGenericRequest(r *http.Request, maxBytes int64, allowedHosts []string) (string, *providers.Request, error) {
	var body types.GenericRPCRequest
	if err := ReadJSON(r, maxBytes, &body); err != nil {
		return "", nil, err
	}

	if strings.TrimSpace(body.Endpoint) == "" {
		return "", nil, &RequestError{Message: "endpoint is required", Param: "endpoint"}
	}
	if body.Method == "" {
		return "", nil, &RequestError{Message: "method is required", Param: "method"}
	}

	if err := checkEndpoint(body.Endpoint, allowedHosts); err != nil {
		return "", nil, err
	}

	req := &providers.Request{Method: body.Method, Params: body.Params}
	if err := req.Normalize(); err != nil {
		return "", nil, envelopeError(err)
	}
	return body.Endpoint, req, nil
}

func checkEndpoint(endpoint string, allowedHosts []string) error {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &RequestError{Message: "endpoint must be an absolute http(s) URL", Param: "endpoint"}
	}
	host := u.Hostname()
	if len(allowedHosts) > 0 && !slices.ContainsFunc(allowedHosts, func(h string) bool { return strings.EqualFold(h, host) }) {
		return &RequestError{Message: fmt.Sprintf("endpoint host %q is not allowed", host), Param: "endpoint"}
	}
	return nil
}

func envelopeError(err error) error {
	switch {
	case errors.Is(err, providers.ErrMissingMethod):
		return &RequestError{Message: err.Error(), Param: "method"}
	case errors.Is(err, providers.ErrInvalidParams):
		return &RequestError{Message: err.Error(), Param: "params"}
	}
	return err
}
