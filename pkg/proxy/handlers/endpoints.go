package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Herocku2/solana-token-creatorf/pkg/proxy"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy/types"
	"github.com/Herocku2/solana-token-creatorf/pkg/routing"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/logging"
)

// SelectionSource exposes the selector's cached state.
type SelectionSource interface {
	Current(segment routing.Segment) (routing.Selection, bool)
	Registry() *routing.Registry
}

// EndpointsHandler reports which endpoint a segment is currently routed to.
// It never probes.
type EndpointsHandler struct {
	source SelectionSource
}

// NewEndpointsHandler creates an endpoint status handler.
func NewEndpointsHandler(source SelectionSource) *EndpointsHandler {
	return &EndpointsHandler{source: source}
}

// ServeHTTP implements http.Handler.
func (h *EndpointsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, r)
		return
	}

	segment, err := routing.ParseSegment(chi.URLParam(r, SegmentParam))
	if err != nil {
		_ = proxy.WriteError(w, r, err)
		return
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, EndpointStatus(h.source, segment))
}

// EndpointStatus describes the cached selection of segment. Without a
// cached selection the registry default is reported.
func EndpointStatus(source SelectionSource, segment routing.Segment) types.EndpointStatus {
	sel, ok := source.Current(segment)
	if !ok {
		return types.EndpointStatus{
			Segment:  string(segment),
			Endpoint: logging.RedactURL(source.Registry().Default(segment).URL),
			Fallback: true,
		}
	}

	expires := sel.ExpiresAt
	status := types.EndpointStatus{
		Segment:   string(segment),
		Endpoint:  logging.RedactURL(sel.Endpoint.URL),
		Cached:    true,
		Fallback:  sel.Fallback,
		ExpiresAt: &expires,
	}
	for _, h := range sel.Health {
		probe := types.EndpointHealth{
			Endpoint: logging.RedactURL(h.Endpoint.URL),
			Alive:    h.Alive,
		}
		if h.Alive {
			probe.LatencyMs = h.LatencyMs()
		} else if h.Err != nil {
			probe.Error = "unreachable"
		}
		status.Probes = append(status.Probes, probe)
	}
	return status
}
