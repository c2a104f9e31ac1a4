package routing

import (
	"sync"
	"time"
)

// EndpointCache holds at most one live selection per segment. An entry
// whose ExpiresAt has passed is never returned; it is treated as absent
// until the selector refreshes it.
type EndpointCache struct {
	// entries maps segments to their current selection
	entries map[Segment]Selection

	// mu protects entries; the cache is read-mostly
	mu sync.RWMutex
}

// NewEndpointCache creates an empty cache.
func NewEndpointCache() *EndpointCache {
	return &EndpointCache{entries: make(map[Segment]Selection)}
}

// Get returns the selection for segment if it is still valid at now.
func (c *EndpointCache) Get(segment Segment, now time.Time) (Selection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sel, ok := c.entries[segment]
	if !ok || !now.Before(sel.ExpiresAt) {
		return Selection{}, false
	}
	return sel, true
}

// Set overwrites the selection for its segment. Selections without an
// expiry are ignored.
func (c *EndpointCache) Set(segment Segment, sel Selection) {
	if sel.ExpiresAt.IsZero() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[segment] = sel
}

// Delete removes the selection for segment.
func (c *EndpointCache) Delete(segment Segment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, segment)
}

// Size returns the number of stored selections, expired ones included.
func (c *EndpointCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
