package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records scheduler metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordCycle records one scheduler step over due regions.
	RecordCycle(ctx context.Context, due int, duration time.Duration, err error)

	// RecordPhase records a single switch or work tick of a region.
	RecordPhase(ctx context.Context, region, phase string, duration time.Duration)

	// RecordBuffer records items and deliveries that crossed a staged
	// connection since the previous call.
	RecordBuffer(ctx context.Context, from, to string, items, deliveries int64)
}

type otelMetrics struct {
	cycles       metric.Int64Counter
	cycleLatency metric.Float64Histogram
	cycleErrors  metric.Int64Counter
	phaseLatency metric.Float64Histogram
	bufferItems  metric.Int64Counter
	deliveries   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics(otel.Meter("tickflow"))
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	cycles, err := meter.Int64Counter("tickflow.cycles",
		metric.WithDescription("Number of scheduler steps"),
	)
	if err != nil {
		return nil, err
	}

	cycleLatency, err := meter.Float64Histogram("tickflow.cycle.latency_ms",
		metric.WithDescription("Wall time of a scheduler step in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cycleErrors, err := meter.Int64Counter("tickflow.cycle.errors",
		metric.WithDescription("Number of failed scheduler steps"),
	)
	if err != nil {
		return nil, err
	}

	phaseLatency, err := meter.Float64Histogram("tickflow.phase.latency_ms",
		metric.WithDescription("Wall time of a region tick in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	bufferItems, err := meter.Int64Counter("tickflow.buffer.items",
		metric.WithDescription("Items delivered through staged connections"),
	)
	if err != nil {
		return nil, err
	}

	deliveries, err := meter.Int64Counter("tickflow.buffer.deliveries",
		metric.WithDescription("Deliver calls on staged connections"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		cycles:       cycles,
		cycleLatency: cycleLatency,
		cycleErrors:  cycleErrors,
		phaseLatency: phaseLatency,
		bufferItems:  bufferItems,
		deliveries:   deliveries,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by the global OTel
// meter provider. Configure the provider first:
//
//	otel.SetMeterProvider(yourProvider)
//
// If the instruments cannot be created a no-op recorder is returned.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// NewMetricsRecorderFor returns a MetricsRecorder using the given provider
// instead of the global one.
func NewMetricsRecorderFor(provider metric.MeterProvider) (MetricsRecorder, error) {
	m, err := newOtelMetrics(provider.Meter("tickflow"))
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *otelMetrics) RecordCycle(ctx context.Context, due int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.Bool("success", err == nil))
	m.cycles.Add(ctx, 1, attrs)
	m.cycleLatency.Record(ctx, ms(duration), attrs)
	if err != nil {
		m.cycleErrors.Add(ctx, 1)
	}
}

func (m *otelMetrics) RecordPhase(ctx context.Context, region, phase string, duration time.Duration) {
	m.phaseLatency.Record(ctx, ms(duration), metric.WithAttributes(
		attribute.String("region", region),
		attribute.String("phase", phase),
	))
}

func (m *otelMetrics) RecordBuffer(ctx context.Context, from, to string, items, deliveries int64) {
	attrs := metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	)
	if items > 0 {
		m.bufferItems.Add(ctx, items, attrs)
	}
	if deliveries > 0 {
		m.deliveries.Add(ctx, deliveries, attrs)
	}
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
