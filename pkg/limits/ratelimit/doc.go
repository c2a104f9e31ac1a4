// Package ratelimit implements fixed-window quota arithmetic.
//
// # Fixed Window
//
// A client's window opens at its first request. Every request increments the
// counter, rejected ones included. Once more than Window has elapsed since the
// window opened, the next request starts a new window with a count of one:
//
//	p := ratelimit.Policy{Window: 15 * time.Minute, Limit: 100}
//	w = p.Advance(w, now)
//	res := p.Evaluate(w, now)
//	if !res.Allowed {
//	    // reject; retry in res.RetryAfter
//	}
//
// Fixed windows admit a burst of up to 2*Limit requests around a window
// boundary. A sliding window would smooth that out but changes the observable
// quota, so it is not offered here.
//
// The functions in this package are pure. Storage and locking live in the
// storage package: the memory store applies Advance under its shard lock, and
// the SQLite store expresses the same reset rule in its upsert so that the
// read-modify-write stays a single statement.
package ratelimit
