package tickflow

import (
	"log/slog"

	"github.com/randalmurphal/tickflow/pkg/tickflow/clock"
	"github.com/randalmurphal/tickflow/pkg/tickflow/observability"
)

type infraConfig struct {
	clock    *clock.Master
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
	tracing  bool
	parallel bool
	runID    string
}

func defaultInfraConfig() infraConfig {
	return infraConfig{
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures an Infrastructure.
type Option func(*infraConfig)

// WithClock sets the virtual clock the scheduler advances.
// Default: a private clock at clock.DefaultResolution.
func WithClock(m *clock.Master) Option {
	return func(c *infraConfig) {
		c.clock = m
	}
}

// WithLogger sets the logger used by the scheduler and handed to every
// region it creates. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *infraConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables metric recording.
//
//	infra := tickflow.New(tickflow.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *infraConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables one span per step with a child span per region tick.
// Pass nil to use the global OTel tracer provider.
func WithTracing(spans observability.SpanManager) Option {
	return func(c *infraConfig) {
		if spans == nil {
			spans = observability.NewSpanManager()
		}
		c.spans = spans
		c.tracing = true
	}
}

// WithParallelRegions ticks due regions on their own goroutines. Every
// region finishes its switch phase before any region starts working.
func WithParallelRegions() Option {
	return func(c *infraConfig) {
		c.parallel = true
	}
}

// WithRunID sets the run identifier used in logs, spans and journals.
// Default: a random UUID.
func WithRunID(id string) Option {
	return func(c *infraConfig) {
		c.runID = id
	}
}
