package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Herocku2/solana-token-creatorf/pkg/config"
)

// InstrumentationName is the tracer name used for server spans.
const InstrumentationName = "github.com/Herocku2/solana-token-creatorf"

// Tracer owns the process tracer provider. Packages that emit spans obtain
// their tracer from the global provider via otel.Tracer, so installing a
// Tracer is enough to turn their spans on.
type Tracer struct {
	config   config.TracingConfig
	provider trace.TracerProvider
	sdk      *sdktrace.TracerProvider
}

// New creates a Tracer for cfg and installs it as the global provider.
//
// If tracing is disabled a noop provider is installed and no exporter is
// created. Otherwise spans are batched to an OTLP gRPC collector at
// cfg.Endpoint. The exporter connects lazily, so New does not fail when
// the collector is down.
//
// The tracer must be shut down to flush pending spans:
//
//	defer tracer.Shutdown(context.Background())
func New(ctx context.Context, cfg config.TracingConfig, version string) (*Tracer, error) {
	t := &Tracer{config: cfg}

	if !cfg.Enabled {
		t.provider = noop.NewTracerProvider()
		otel.SetTracerProvider(t.provider)
		return t, nil
	}

	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := newResource(ctx, cfg.ServiceName, version)
	if err != nil {
		return nil, err
	}

	t.sdk = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SampleRatio)),
	)
	t.provider = t.sdk

	otel.SetTracerProvider(t.provider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	return t, nil
}

// newResource describes the gateway process. Attributes are attached without
// a schema URL so they merge with whatever schema the SDK detectors report.
func newResource(ctx context.Context, serviceName, version string) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// Provider returns the installed tracer provider.
func (t *Tracer) Provider() trace.TracerProvider {
	return t.provider
}

// Enabled returns whether spans are exported.
func (t *Tracer) Enabled() bool {
	return t.sdk != nil
}

// Shutdown flushes any pending spans and shuts down the exporter.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.sdk == nil {
		return nil
	}
	return t.sdk.Shutdown(ctx)
}

// TraceID returns the trace ID from the context as a string.
// Returns empty string if no trace context exists.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
