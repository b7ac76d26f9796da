// Package observability provides logging, metrics and tracing helpers for
// the tickflow scheduler.
//
// Features:
//   - Structured logging via slog
//   - Cycle, phase and buffer metrics via OpenTelemetry
//   - Cycle and phase spans via OpenTelemetry
//
// Metrics and tracing are opt-in and have no-op implementations.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds run and region context to a logger.
//
//	logger := EnrichLogger(base, runID, "producer")
//	logger.Info("sampled") // includes run_id and region
func EnrichLogger(logger *slog.Logger, runID, region string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("run_id", runID),
		slog.String("region", region),
	)
}

// LogRunStart logs the start of a multi-step run. The run ID is expected
// on the logger already (see EnrichLogger).
func LogRunStart(logger *slog.Logger, steps int) {
	if logger == nil {
		return
	}
	logger.Info("run starting",
		slog.Int("steps", steps),
	)
}

// LogRunComplete logs the end of a run, successful or not.
func LogRunComplete(logger *slog.Logger, steps int, durationMs float64, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Error("run failed",
			slog.Int("steps_completed", steps),
			slog.Float64("duration_ms", durationMs),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Info("run completed",
		slog.Int("steps", steps),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogCycleStart logs the beginning of a scheduler step.
func LogCycleStart(logger *slog.Logger, step int64, ticks int64, due int) {
	if logger == nil {
		return
	}
	logger.Debug("cycle starting",
		slog.Int64("step", step),
		slog.Int64("clock_ticks", ticks),
		slog.Int("regions_due", due),
	)
}

// LogCycleComplete logs a finished scheduler step.
func LogCycleComplete(logger *slog.Logger, step int64, due int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("cycle completed",
		slog.Int64("step", step),
		slog.Int("regions_ticked", due),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogTickError logs a failed switch or work tick.
func LogTickError(logger *slog.Logger, region, phase string, err error) {
	if logger == nil {
		return
	}
	logger.Error("tick failed",
		slog.String("region", region),
		slog.String("phase", phase),
		slog.String("error", err.Error()),
	)
}

// LogSettingFallback logs that a setting used its fallback value.
// A nil err means the key was simply absent.
func LogSettingFallback(logger *slog.Logger, key string, err error) {
	if logger == nil {
		return
	}
	if err == nil {
		logger.Debug("setting not found, using fallback",
			slog.String("key", key),
		)
		return
	}
	logger.Warn("setting invalid, using fallback",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// TimedOperation returns a function reporting the wall time elapsed since
// the call, in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
