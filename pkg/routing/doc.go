// Package routing chooses which upstream RPC node serves each network
// segment.
//
// A Registry holds the ordered candidates per segment. A Prober issues a
// liveness call against one candidate. The Selector probes every candidate
// of a segment concurrently, caches the fastest live one for a TTL and
// falls back to the first candidate when none answers. Cache misses for the
// same segment share a single probe round through a singleflight.Group, so
// probe traffic stays at one round per TTL expiry regardless of how many
// requests arrive at once.
package routing
