package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the protocol version written on outbound requests.
const JSONRPCVersion = "2.0"

var (
	defaultID     = json.RawMessage("1")
	defaultParams = json.RawMessage("[]")
)

// Request is a JSON-RPC request envelope. ID and Params are kept raw so
// that the proxy forwards them without reinterpreting their contents.
type Request struct {
	// JSONRPC is the protocol version, "2.0"
	JSONRPC string `json:"jsonrpc"`

	// ID correlates the response with the request
	ID json.RawMessage `json:"id"`

	// Method is the RPC method name (e.g., "getBalance")
	Method string `json:"method"`

	// Params is the ordered parameter list
	Params json.RawMessage `json:"params"`
}

// NewRequest builds a normalized request with id 1. Nil params become [].
func NewRequest(method string, params json.RawMessage) *Request {
	r := &Request{Method: method, Params: params}
	_ = r.Normalize()
	return r
}

// Normalize fills in protocol defaults and validates the envelope.
// Only the presence of a method and the shape of params are checked.
func (r *Request) Normalize() error {
	if r.Method == "" {
		return ErrMissingMethod
	}
	if r.JSONRPC == "" {
		r.JSONRPC = JSONRPCVersion
	}
	if isNull(r.ID) {
		r.ID = defaultID
	}
	if isNull(r.Params) {
		r.Params = defaultParams
		return nil
	}
	switch bytes.TrimSpace(r.Params)[0] {
	case '[', '{':
		return nil
	default:
		return ErrInvalidParams
	}
}

// Response is a JSON-RPC response envelope.
type Response struct {
	// JSONRPC is the protocol version echoed by the node
	JSONRPC string `json:"jsonrpc,omitempty"`

	// ID echoes the request ID
	ID json.RawMessage `json:"id,omitempty"`

	// Result is the raw method result, absent on error
	Result json.RawMessage `json:"result,omitempty"`

	// Error is the JSON-RPC error object, absent on success
	Error *RPCError `json:"error,omitempty"`
}

// RPCError is the error object of a JSON-RPC response.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ResultString returns the result decoded as a JSON string, or "" if the
// result is absent or not a string.
func (r *Response) ResultString() string {
	var s string
	if err := json.Unmarshal(r.Result, &s); err != nil {
		return ""
	}
	return s
}

// DecodeResponse parses body as a response envelope.
func DecodeResponse(endpoint string, body []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{
			Endpoint:    endpointHost(endpoint),
			RawResponse: truncate(body, 256),
			Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}
	return &resp, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
