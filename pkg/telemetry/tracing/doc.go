// Package tracing configures OpenTelemetry for the gateway.
//
// New installs a global tracer provider: a noop provider when tracing is
// disabled, otherwise an SDK provider that batches spans to an OTLP gRPC
// collector. Spans are emitted by the packages doing the work:
//
//   - routing: "endpoint.refresh" per probe round
//   - providers: "rpc.post" per upstream call
//   - upload: "upload.put" per storage write
//
// HTTPMiddleware adds the server span those become children of, honoring
// an inbound traceparent header.
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: localhost:4317
//	    insecure: true
//	    sample_ratio: 0.1
//
// Root spans are sampled at sample_ratio; child spans follow their parent.
package tracing
