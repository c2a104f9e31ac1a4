// Package telemetry groups the gateway's observability packages.
//
// # Components
//
//   - logging: slog setup with credential redaction and request context
//   - metrics: Prometheus collector for HTTP, endpoint selection, upstream
//     forwarding and uploads
//   - tracing: OpenTelemetry provider, sampling and HTTP server spans
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
//	slog.SetDefault(logger)
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(ctx, cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//
// Endpoint URLs often carry provider API keys. Every component logs and
// labels them by host, or through logging.RedactURL, never verbatim.
package telemetry
