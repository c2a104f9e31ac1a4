package types

import (
	"encoding/json"
	"time"
)

// RPCRequest is the body of a fixed-network RPC call. Missing jsonrpc, id
// and params are filled in before forwarding.
type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// GenericRPCRequest is the body of a generic RPC call, where the caller
// names the upstream endpoint.
type GenericRPCRequest struct {
	// Endpoint is the absolute http(s) URL of the upstream node.
	Endpoint string `json:"endpoint"`

	// Method is the RPC method name.
	Method string `json:"method"`

	// Params is the parameter list, [] when absent.
	Params json.RawMessage `json:"params,omitempty"`
}

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	CID     string `json:"cid,omitempty"`
	Name    string `json:"name,omitempty"`
}

// EndpointStatus describes the cached selection of a segment. URLs are
// redacted.
type EndpointStatus struct {
	Segment   string           `json:"segment"`
	Endpoint  string           `json:"endpoint"`
	Cached    bool             `json:"cached"`
	Fallback  bool             `json:"fallback"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
	Probes    []EndpointHealth `json:"probes,omitempty"`
}

// EndpointHealth is one probe result in an EndpointStatus.
type EndpointHealth struct {
	Endpoint  string  `json:"endpoint"`
	Alive     bool    `json:"alive"`
	LatencyMs float64 `json:"latency_ms,omitempty"`
	Error     string  `json:"error,omitempty"`
}
