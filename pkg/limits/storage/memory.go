package storage

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/Herocku2/solana-token-creatorf/pkg/limits/ratelimit"
)

const defaultShards = 32

// MemoryStore implements Store with a sharded in-memory map.
// This is the default store and provides fast access with no persistence.
// All data is lost when the process exits.
//
// Each shard has its own mutex, so increments for different clients rarely
// contend and increments for the same client are serialized.
type MemoryStore struct {
	shards []*memoryShard
}

type memoryShard struct {
	mu      sync.Mutex
	records map[string]*QuotaRecord
}

// NewMemoryStore creates an in-memory store with the default shard count.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithShards(defaultShards)
}

// NewMemoryStoreWithShards creates an in-memory store with n shards.
func NewMemoryStoreWithShards(n int) *MemoryStore {
	if n <= 0 {
		n = defaultShards
	}
	s := &MemoryStore{shards: make([]*memoryShard, n)}
	for i := range s.shards {
		s.shards[i] = &memoryShard{records: make(map[string]*QuotaRecord)}
	}
	return s
}

func (s *MemoryStore) shard(key string) *memoryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Increment implements Store.
func (s *MemoryStore) Increment(ctx context.Context, key string, now time.Time, window time.Duration) (QuotaRecord, error) {
	if key == "" {
		return QuotaRecord{}, ErrEmptyKey
	}

	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.records[key]
	if !ok {
		rec = &QuotaRecord{ClientKey: key}
		sh.records[key] = rec
	}
	w := ratelimit.Policy{Window: window}.Advance(ratelimit.Window{Start: rec.WindowStart, Count: rec.Count}, now)
	rec.WindowStart, rec.Count = w.Start, w.Count

	return *rec, nil
}

// Sweep implements Store.
func (s *MemoryStore) Sweep(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	removed := 0
	for _, sh := range s.shards {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		sh.mu.Lock()
		for key, rec := range sh.records {
			if ratelimit.Expired(rec.WindowStart, now, window) {
				delete(sh.records, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed, nil
}

// Len implements Store.
func (s *MemoryStore) Len(ctx context.Context) (int, error) {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.records)
		sh.mu.Unlock()
	}
	return n, nil
}

// Get returns a copy of the record for key, if tracked.
func (s *MemoryStore) Get(key string) (QuotaRecord, bool) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.records[key]
	if !ok {
		return QuotaRecord{}, false
	}
	return *rec, true
}

// Close implements Store. It drops all records.
func (s *MemoryStore) Close() error {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.records = make(map[string]*QuotaRecord)
		sh.mu.Unlock()
	}
	return nil
}
