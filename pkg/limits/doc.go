// Package limits provides per-client admission control for API requests.
//
// # Overview
//
// The Controller counts requests per client key in fixed windows (15 minutes
// and 100 requests by default) and reports, for every request, whether it is
// admitted together with the remaining quota and the window reset time.
//
// # Architecture
//
// The package is organized into sub-packages:
//
//   - ratelimit: fixed-window arithmetic (reset rule, remaining, reset time)
//   - storage: quota record stores (sharded memory, SQLite)
//
// # Usage
//
//	store, err := limits.NewStore(cfg.Admission.Store)
//	ctrl := limits.NewController(limits.Config{
//	    Policy:        limits.PolicyFromConfig(cfg.Admission),
//	    SweepInterval: cfg.Admission.SweepInterval,
//	    Store:         store,
//	})
//
//	d := ctrl.Admit(ctx, clientKey, time.Now())
//
// # Failure Semantics
//
// Admit never fails. Unknown clients share the "unknown" bucket, and a store
// error is answered from an in-memory fallback and reported as Degraded.
//
// # Thread Safety
//
// All operations are thread-safe. The policy can be replaced at runtime
// with UpdatePolicy, for example on configuration reload.
package limits
