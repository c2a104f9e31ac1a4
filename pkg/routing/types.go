package routing

import (
	"math"
	"strings"
	"time"
)

// Segment identifies a blockchain network deployment target.
type Segment string

const (
	// Devnet is the test network segment.
	Devnet Segment = "devnet"

	// Mainnet is the production network segment.
	Mainnet Segment = "mainnet"
)

// Segments lists every known segment in display order.
var Segments = []Segment{Devnet, Mainnet}

// ParseSegment resolves a segment name. Besides the canonical names it
// accepts "test"/"testnet" for devnet and "production"/"mainnet-beta" for
// mainnet.
func ParseSegment(name string) (Segment, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "devnet", "test", "testnet":
		return Devnet, nil
	case "mainnet", "mainnet-beta", "production":
		return Mainnet, nil
	}
	return "", &UnknownSegmentError{Name: name}
}

// Endpoint is the address of one upstream RPC node. Endpoints are immutable
// once registered.
type Endpoint struct {
	// URL is the JSON-RPC URL of the node.
	URL string

	// Segment is the network the node serves.
	Segment Segment
}

// IsZero reports whether the endpoint is unset.
func (e Endpoint) IsZero() bool {
	return e.URL == ""
}

// EndpointHealth is the outcome of one liveness probe.
type EndpointHealth struct {
	// Endpoint is the probed node.
	Endpoint Endpoint

	// Alive is true when the node answered the liveness call with "ok".
	Alive bool

	// Latency is the round-trip time of the probe. Meaningless when !Alive.
	Latency time.Duration

	// CheckedAt is when the probe completed.
	CheckedAt time.Time

	// Err describes why the node was considered dead, if it was.
	Err error
}

// LatencyMs returns the probe latency in milliseconds, or +Inf when the
// node is not alive so that dead nodes always sort last.
func (h EndpointHealth) LatencyMs() float64 {
	if !h.Alive {
		return math.Inf(1)
	}
	return float64(h.Latency) / float64(time.Millisecond)
}

// Selection is the outcome of a probe round for one segment.
type Selection struct {
	// Endpoint is the chosen node.
	Endpoint Endpoint

	// ExpiresAt is when the selection stops being served from cache.
	// Zero for fallback selections, which are never cached.
	ExpiresAt time.Time

	// Fallback is true when no candidate was alive and the first registry
	// candidate was returned instead.
	Fallback bool

	// Health holds the probe results in registry order.
	Health []EndpointHealth
}
