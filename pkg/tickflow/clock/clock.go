// Package clock provides the virtual clock that drives tick schedules.
//
// Time never moves on its own: a Master only advances when Advance is
// called, one resolution step at a time. Two facades read the same counter.
// Steady returns monotonic points for measuring elapsed virtual time, System
// returns calendar times that convert to and from whole Unix seconds.
//
// The package keeps one shared Master per resolution for the lifetime of
// the process (see ForResolution and Default). Tests that need isolation
// create their own with New.
package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultResolution is the step of the default master: hundredths of a second.
const DefaultResolution = 10 * time.Millisecond

// Master owns the virtual time counter. It is safe for concurrent use.
type Master struct {
	resolution time.Duration
	epoch      time.Time
	ticks      atomic.Int64
}

// Option configures a Master.
type Option func(*Master)

// WithEpoch sets the calendar time the System facade reports at tick zero.
// Default: the Unix epoch.
func WithEpoch(epoch time.Time) Option {
	return func(m *Master) {
		m.epoch = epoch.UTC()
	}
}

// New creates a Master advancing by resolution per tick.
// Panics if resolution is not positive.
func New(resolution time.Duration, opts ...Option) *Master {
	if resolution <= 0 {
		panic("clock: resolution must be positive")
	}
	m := &Master{
		resolution: resolution,
		epoch:      time.Unix(0, 0).UTC(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Advance moves virtual time forward by exactly one resolution step.
func (m *Master) Advance() {
	m.ticks.Add(1)
}

// AdvanceBy calls Advance n times.
func (m *Master) AdvanceBy(n int64) {
	if n > 0 {
		m.ticks.Add(n)
	}
}

// Ticks returns the number of Advance calls so far.
func (m *Master) Ticks() int64 {
	return m.ticks.Load()
}

// Resolution returns the duration of one tick.
func (m *Master) Resolution() time.Duration {
	return m.resolution
}

// Elapsed returns the virtual time since tick zero.
func (m *Master) Elapsed() time.Duration {
	return time.Duration(m.ticks.Load()) * m.resolution
}

// Steady returns the monotonic facade.
func (m *Master) Steady() Steady {
	return Steady{master: m}
}

// System returns the calendar facade.
func (m *Master) System() System {
	return System{master: m}
}

var (
	mastersMu sync.Mutex
	masters   = make(map[time.Duration]*Master)
)

// ForResolution returns the process-wide Master for resolution, creating it
// on first use.
func ForResolution(resolution time.Duration) *Master {
	mastersMu.Lock()
	defer mastersMu.Unlock()

	if m, ok := masters[resolution]; ok {
		return m
	}
	m := New(resolution)
	masters[resolution] = m
	return m
}

// Default returns the process-wide Master with DefaultResolution.
func Default() *Master {
	return ForResolution(DefaultResolution)
}

// Advance advances the default master by one tick.
func Advance() {
	Default().Advance()
}

// SteadyNow reads the steady facade of the default master.
func SteadyNow() Point {
	return Default().Steady().Now()
}

// SystemNow reads the system facade of the default master.
func SystemNow() time.Time {
	return Default().System().Now()
}
