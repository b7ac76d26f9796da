package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

var _ MetricsRecorder = NoopMetrics{}

// RecordCycle does nothing.
func (NoopMetrics) RecordCycle(context.Context, int, time.Duration, error) {}

// RecordPhase does nothing.
func (NoopMetrics) RecordPhase(context.Context, string, string, time.Duration) {}

// RecordBuffer does nothing.
func (NoopMetrics) RecordBuffer(context.Context, string, string, int64, int64) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartCycleSpan returns ctx unchanged and a no-op span.
func (NoopSpanManager) StartCycleSpan(ctx context.Context, _ string, _ int64) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartPhaseSpan returns ctx unchanged and a no-op span.
func (NoopSpanManager) StartPhaseSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(trace.Span, error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(context.Context, string, ...attribute.KeyValue) {}
