package routing

import (
	"context"
	"log/slog"
	"time"

	"github.com/Herocku2/solana-token-creatorf/pkg/providers"
)

// Prober checks the liveness of a single endpoint. Implementations never
// fail: every problem maps to Alive=false. They must be safe for
// concurrent use.
type Prober interface {
	Probe(ctx context.Context, endpoint Endpoint) EndpointHealth
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, endpoint Endpoint) EndpointHealth

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, endpoint Endpoint) EndpointHealth {
	return f(ctx, endpoint)
}

// HTTPProber sends a JSON-RPC liveness call (getHealth by default) and
// considers the node alive only if the result is the string "ok".
type HTTPProber struct {
	client  *providers.Client
	method  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewHTTPProber creates a prober. The timeout bounds each probe on top of
// whatever deadline the caller's context carries.
func NewHTTPProber(client *providers.Client, method string, timeout time.Duration) *HTTPProber {
	if method == "" {
		method = "getHealth"
	}
	return &HTTPProber{
		client:  client,
		method:  method,
		timeout: timeout,
		logger:  slog.Default().With("component", "prober"),
	}
}

// Probe implements Prober.
func (p *HTTPProber) Probe(ctx context.Context, endpoint Endpoint) EndpointHealth {
	health := EndpointHealth{Endpoint: endpoint}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, _, err := p.client.Call(ctx, endpoint.URL, providers.NewRequest(p.method, nil))
	health.CheckedAt = time.Now()

	switch {
	case err != nil:
		health.Err = &ProbeError{Reason: "request failed", Cause: err}
	case resp.Error != nil:
		health.Err = &ProbeError{Reason: "node reported error", Cause: resp.Error}
	case resp.ResultString() != "ok":
		health.Err = &ProbeError{Reason: "result not ok"}
	default:
		health.Alive = true
		health.Latency = health.CheckedAt.Sub(start)
	}

	if health.Err != nil {
		p.logger.Debug("probe failed", "segment", endpoint.Segment, "error", health.Err)
	}
	return health
}
