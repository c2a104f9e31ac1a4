// Package storage provides stores for per-client quota records.
//
// # Overview
//
// A quota record holds the start of a client's current fixed window and the
// number of requests seen in it. Two stores are provided:
//
//   - Memory: sharded in-memory map (default, no persistence)
//   - SQLite: file-based persistence for single-instance deployments
//
// # Usage
//
//	store := storage.NewMemoryStore()
//
//	rec, err := store.Increment(ctx, "1.2.3.4", time.Now(), 15*time.Minute)
//
//	// Drop records whose window is over
//	removed, err := store.Sweep(ctx, time.Now(), 15*time.Minute)
//
// # Thread Safety
//
// All stores are thread-safe. Increment is atomic per client key: two
// concurrent requests from the same client never observe the same count.
package storage
