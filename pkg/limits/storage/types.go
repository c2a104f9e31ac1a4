package storage

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyKey is returned when a record is addressed without a client key.
var ErrEmptyKey = errors.New("client key cannot be empty")

// Store persists per-client quota records.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// Increment applies one request for key at now: the record's window is
	// restarted if it is absent or older than window, then its count is
	// incremented. The read-modify-write is atomic per key. The updated
	// record is returned.
	Increment(ctx context.Context, key string, now time.Time, window time.Duration) (QuotaRecord, error)

	// Sweep removes records whose window expired before now and returns the
	// number removed.
	Sweep(ctx context.Context, now time.Time, window time.Duration) (int, error)

	// Len returns the number of tracked records.
	Len(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	// The store should not be used after calling Close.
	Close() error
}

// QuotaRecord is the fixed-window counter of one client.
type QuotaRecord struct {
	// ClientKey identifies the client (an IP address or the sentinel key).
	ClientKey string

	// WindowStart is when the current window opened.
	WindowStart time.Time

	// Count is the number of requests in the current window.
	Count int
}
