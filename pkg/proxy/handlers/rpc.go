package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Herocku2/solana-token-creatorf/pkg/providers"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy"
	"github.com/Herocku2/solana-token-creatorf/pkg/routing"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/logging"
)

// SegmentParam is the chi URL parameter naming the network segment.
const SegmentParam = "segment"

// Forwarder relays RPC calls upstream.
type Forwarder interface {
	Forward(ctx context.Context, segment routing.Segment, req *providers.Request) ([]byte, error)
	ForwardTo(ctx context.Context, endpoint string, req *providers.Request) ([]byte, error)
}

// RPCHandler serves fixed-network RPC calls. The segment comes from the
// {segment} URL parameter, or is pinned for legacy routes.
type RPCHandler struct {
	forwarder Forwarder
	segment   routing.Segment
	maxBytes  int64
}

// NewRPCHandler creates a handler that reads the segment from the URL.
func NewRPCHandler(forwarder Forwarder, maxBytes int64) *RPCHandler {
	return &RPCHandler{forwarder: forwarder, maxBytes: maxBytes}
}

// NewFixedRPCHandler creates a handler bound to one segment.
func NewFixedRPCHandler(forwarder Forwarder, segment routing.Segment, maxBytes int64) *RPCHandler {
	return &RPCHandler{forwarder: forwarder, segment: segment, maxBytes: maxBytes}
}

// ServeHTTP implements http.Handler.
func (h *RPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r)
		return
	}

	segment := h.segment
	if segment == "" {
		var err error
		segment, err = routing.ParseSegment(chi.URLParam(r, SegmentParam))
		if err != nil {
			_ = proxy.WriteError(w, r, err)
			return
		}
	}

	ctx := logging.WithSegment(r.Context(), string(segment))
	r = r.WithContext(ctx)

	req, err := proxy.ParseRPCRequest(r, h.maxBytes)
	if err != nil {
		_ = proxy.WriteError(w, r, err)
		return
	}

	body, err := h.forwarder.Forward(ctx, segment, req)
	if err != nil {
		_ = proxy.WriteError(w, r, err)
		return
	}

	_ = proxy.WriteRawJSON(w, http.StatusOK, body)
}

// GenericRPCHandler serves RPC calls addressed to a caller-named endpoint.
type GenericRPCHandler struct {
	forwarder    Forwarder
	maxBytes     int64
	allowedHosts []string
}

// NewGenericRPCHandler creates a generic RPC handler. A non-empty
// allowedHosts restricts the endpoints callers may name.
func NewGenericRPCHandler(forwarder Forwarder, maxBytes int64, allowedHosts []string) *GenericRPCHandler {
	return &GenericRPCHandler{forwarder: forwarder, maxBytes: maxBytes, allowedHosts: allowedHosts}
}

// ServeHTTP implements http.Handler.
func (h *GenericRPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r)
		return
	}

	endpoint, req, err := proxy.ParseGenericRequest(r, h.maxBytes, h.allowedHosts)
	if err != nil {
		_ = proxy.WriteError(w, r, err)
		return
	}

	body, err := h.forwarder.ForwardTo(r.Context(), endpoint, req)
	if err != nil {
		_ = proxy.WriteError(w, r, err)
		return
	}

	_ = proxy.WriteRawJSON(w, http.StatusOK, body)
}
