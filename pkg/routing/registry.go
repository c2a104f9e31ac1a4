package routing

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Herocku2/solana-token-creatorf/pkg/config"
)

// Registry holds the ordered candidate endpoints of each segment. Order is
// a priority hint: the first candidate is the default when nothing is alive.
// Lookups do no I/O. Candidate lists may be replaced on configuration reload.
type Registry struct {
	mu         sync.RWMutex
	candidates map[Segment][]Endpoint
}

// NewRegistry builds a registry from URL lists keyed by segment. Every
// known segment must have at least one candidate.
func NewRegistry(urls map[Segment][]string) (*Registry, error) {
	r := &Registry{candidates: make(map[Segment][]Endpoint, len(Segments))}
	for _, segment := range Segments {
		if _, err := r.Replace(segment, urls[segment]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RegistryFromConfig builds a registry from the networks section.
// Environment overrides have already been prepended by the config loader.
func RegistryFromConfig(cfg config.NetworksConfig) (*Registry, error) {
	return NewRegistry(URLsFromConfig(cfg))
}

// URLsFromConfig extracts candidate URLs per segment.
func URLsFromConfig(cfg config.NetworksConfig) map[Segment][]string {
	return map[Segment][]string{
		Devnet:  cfg.Candidates(config.SegmentDevnet),
		Mainnet: cfg.Candidates(config.SegmentMainnet),
	}
}

// Candidates returns a copy of the segment's candidates in priority order.
// Unknown segments yield nil.
func (r *Registry) Candidates(segment Segment) []Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.candidates[segment])
}

// Default returns the first candidate of the segment.
func (r *Registry) Default(segment Segment) Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if list := r.candidates[segment]; len(list) > 0 {
		return list[0]
	}
	return Endpoint{}
}

// Replace swaps the candidate list of a segment and reports whether it
// changed.
func (r *Registry) Replace(segment Segment, urls []string) (bool, error) {
	if len(urls) == 0 {
		return false, fmt.Errorf("%w: %s", ErrNoCandidates, segment)
	}

	next := make([]Endpoint, 0, len(urls))
	for _, u := range urls {
		next = append(next, Endpoint{URL: u, Segment: segment})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	changed := !slices.Equal(r.candidates[segment], next)
	r.candidates[segment] = next
	return changed, nil
}
