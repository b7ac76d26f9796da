package observability

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Trace exporters understood by NewTraceProvider.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// TraceConfig selects where scheduler spans go.
type TraceConfig struct {
	// Exporter is one of ExporterNone, ExporterStdout or ExporterOTLP.
	// Empty means none.
	Exporter string

	// Writer receives stdout exporter output. Default: os.Stdout.
	Writer io.Writer

	// OTLPEndpoint is the collector address for the OTLP exporter.
	// Default: localhost:4317.
	OTLPEndpoint string

	// SampleRate is the fraction of cycles traced. Default: 1.
	SampleRate float64

	// ServiceName tags every span. Default: tickflow.
	ServiceName string
}

// TraceProvider owns an SDK tracer provider and its exporter.
type TraceProvider struct {
	provider *sdktrace.TracerProvider
}

// NewTraceProvider builds a tracer provider for cfg. It does not replace
// the global provider; hand SpanManager() to tickflow.WithTracing.
func NewTraceProvider(ctx context.Context, cfg TraceConfig) (*TraceProvider, error) {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.Exporter {
	case ExporterStdout:
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
	case ExporterOTLP:
		endpoint := cfg.OTLPEndpoint
		if endpoint == "" {
			endpoint = "localhost:4317"
		}
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}
	case ExporterNone, "":
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.Exporter)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tickflow"
	}
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 1
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	}
	switch cfg.Exporter {
	case ExporterStdout:
		// spans appear in step order
		opts = append(opts, sdktrace.WithSyncer(exporter))
	case ExporterOTLP:
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	return &TraceProvider{provider: sdktrace.NewTracerProvider(opts...)}, nil
}

// SpanManager returns a SpanManager emitting to this provider.
func (p *TraceProvider) SpanManager() SpanManager {
	return NewSpanManagerFor(p.provider)
}

// Shutdown flushes pending spans and stops the exporter.
func (p *TraceProvider) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}
