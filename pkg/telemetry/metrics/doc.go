// Package metrics provides Prometheus metrics for the gateway.
//
// # Metrics Categories
//
//   - HTTP: request count and latency by route pattern
//   - Endpoints: probe results, last-known liveness per node, probe rounds
//   - Upstream: forwarded RPC calls by route, segment and outcome
//   - Uploads: storage backend writes, sizes and latency
//
// Admission metrics are defined in pkg/limits and registered into the
// collector's registry.
//
// # Usage
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//
//	selector := routing.NewSelector(registry, prober, scfg, routing.WithObserver(collector))
//	forwarder := proxy.NewForwarder(client, selector, timeout, proxy.WithForwardObserver(collector))
//	relay := upload.NewRelay(settings, backend, upload.WithObserver(collector))
//
//	router.Handle("/metrics", collector.Handler())
//
// Node labels carry the host only; RPC URLs often embed API keys.
package metrics
