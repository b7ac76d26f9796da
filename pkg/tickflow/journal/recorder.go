package journal

import (
	"log/slog"
	"sync"

	"github.com/randalmurphal/tickflow/pkg/tickflow/clock"
	"github.com/randalmurphal/tickflow/pkg/tickflow/connect"
	"github.com/randalmurphal/tickflow/pkg/tickflow/observability"
	"github.com/randalmurphal/tickflow/pkg/tickflow/port"
	"github.com/randalmurphal/tickflow/pkg/tickflow/region"
)

// Recorder is a node that appends the state on its input port to a Store
// every time its sample tick fires. Samples are stamped with the virtual
// clock and with the cycle count of the region the recorder lives in.
//
// Store failures never reach the tick: they are logged and the last one is
// kept for Err.
type Recorder[T any] struct {
	store  Store
	region *region.Region
	series string
	runID  string
	clock  *clock.Master
	every  int64
	logger *slog.Logger
	in     port.StateSink[T]

	mu       sync.Mutex
	ticks    int64
	recorded int64
	lastErr  error
}

// RecorderOption configures a Recorder.
type RecorderOption func(*recorderConfig)

type recorderConfig struct {
	runID  string
	clock  *clock.Master
	every  int64
	logger *slog.Logger
}

// WithRunID sets the run the samples belong to. Default: "default".
func WithRunID(id string) RecorderOption {
	return func(c *recorderConfig) { c.runID = id }
}

// WithClock sets the clock used to stamp samples. Default: clock.Default().
func WithClock(m *clock.Master) RecorderOption {
	return func(c *recorderConfig) { c.clock = m }
}

// WithEvery records only every n-th sample tick, starting with the first.
func WithEvery(n int) RecorderOption {
	return func(c *recorderConfig) {
		if n > 0 {
			c.every = int64(n)
		}
	}
}

// WithRecorderLogger sets the logger for store failures.
// Default: the region's logger.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(c *recorderConfig) { c.logger = logger }
}

// NewRecorder creates a recorder for series living in r.
// Panics if store or r is nil.
func NewRecorder[T any](store Store, r *region.Region, series string, opts ...RecorderOption) *Recorder[T] {
	if store == nil {
		panic("journal: nil store")
	}
	if r == nil {
		panic("journal: nil region")
	}
	cfg := recorderConfig{runID: "default", every: 1, logger: r.Logger()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = clock.Default()
	}
	return &Recorder[T]{
		store:  store,
		region: r,
		series: series,
		runID:  cfg.runID,
		clock:  cfg.clock,
		every:  cfg.every,
		logger: cfg.logger,
		in:     port.NewStateSink[T](),
	}
}

// In returns the sampled state port, bound to the recorder's region so
// connections from other regions are staged.
func (r *Recorder[T]) In() region.Aware[port.StateSink[T]] {
	return region.Bind(r.region, r.in)
}

// SampleTick returns the event port triggering Sample, bound to the
// recorder's region. Connect the region's work tick to it.
func (r *Recorder[T]) SampleTick() region.Aware[port.EventSink[connect.Void]] {
	return region.Bind(r.region, port.NewEventSink(func(connect.Void) { r.Sample() }))
}

// Sample reads the input and appends it, subject to WithEvery.
func (r *Recorder[T]) Sample() {
	r.mu.Lock()
	n := r.ticks
	r.ticks++
	r.mu.Unlock()
	if n%r.every != 0 {
		return
	}

	e, err := NewEntry(r.runID, r.series, r.region.Cycles(), r.clock.Ticks(), r.clock.System().Now(), r.in.Get())
	if err == nil {
		_, err = r.store.Append(e)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.lastErr = err
		observability.LogTickError(r.logger, r.region.Name(), region.PhaseWork.String(), err)
		return
	}
	r.recorded++
}

// Recorded returns the number of samples stored.
func (r *Recorder[T]) Recorded() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recorded
}

// Err returns the last store failure, or nil.
func (r *Recorder[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}
