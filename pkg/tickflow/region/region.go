// Package region implements independently scheduled execution domains and
// the region-aware wiring between them.
//
// A Region runs a two-phase cycle driven from outside: Switch fires the
// switch tick, during which buffers fed from this region commit; Work fires
// the work tick, during which buffers feeding this region deliver and
// consumer logic runs. Both ticks are ordinary event-out ports, so nodes
// subscribe to "once per cycle" with the same wiring as application data.
//
// Ports are attached to regions with Bind. The resulting Aware port keeps a
// weak reference to its region, so the region's owner alone decides its
// lifetime. Connecting Aware endpoints through EventPath or StatePath picks
// the buffering policy once, at wiring time (see package buffer).
package region

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/randalmurphal/tickflow/pkg/tickflow/connect"
	"github.com/randalmurphal/tickflow/pkg/tickflow/port"
)

// ID identifies a region. Regions are the same iff their IDs are equal.
type ID = uuid.UUID

// Phase is the position of a region within its cycle.
type Phase int32

// Region phases.
const (
	PhaseIdle Phase = iota
	PhaseSwitch
	PhaseWork
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSwitch:
		return "switch"
	case PhaseWork:
		return "work"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Region is an execution domain with its own switch and work ticks.
// Share it by pointer; ports only hold weak references to it.
type Region struct {
	id     ID
	name   string
	logger *slog.Logger

	switchTick port.EventSource[connect.Void]
	workTick   port.EventSource[connect.Void]

	// deliver runs staged deliveries ahead of every work tick subscriber.
	deliver port.EventSource[connect.Void]

	phase  atomic.Int32
	cycles atomic.Int64
}

// Option configures a Region.
type Option func(*Region)

// WithID overrides the generated region ID.
func WithID(id ID) Option {
	return func(r *Region) {
		r.id = id
	}
}

// WithLogger sets the logger used for wiring diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Region) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a region. The name is informational; identity comes from the
// ID, which is a fresh UUID unless WithID is given.
func New(name string, opts ...Option) *Region {
	r := &Region{
		id:         uuid.New(),
		name:       name,
		logger:     slog.Default(),
		switchTick: port.NewEventSource[connect.Void](),
		workTick:   port.NewEventSource[connect.Void](),
		deliver:    port.NewEventSource[connect.Void](),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(slog.String("region", r.name))
	return r
}

// ID returns the region identity.
func (r *Region) ID() ID { return r.id }

// Name returns the region name.
func (r *Region) Name() string { return r.name }

// Logger returns the region's logger.
func (r *Region) Logger() *slog.Logger { return r.logger }

// SwitchTick is fired once per cycle, before any region's work phase.
func (r *Region) SwitchTick() port.EventSource[connect.Void] { return r.switchTick }

// WorkTick is fired once per cycle, after every region's switch phase.
func (r *Region) WorkTick() port.EventSource[connect.Void] { return r.workTick }

// Phase returns the current phase.
func (r *Region) Phase() Phase { return Phase(r.phase.Load()) }

// Cycles returns the number of completed work phases.
func (r *Region) Cycles() int64 { return r.cycles.Load() }

// Switch runs the switch phase: every subscriber of the switch tick runs,
// in subscription order. Panics if the region is already inside a phase.
func (r *Region) Switch() {
	r.enter(PhaseSwitch)
	defer r.phase.Store(int32(PhaseIdle))
	r.switchTick.Fire(connect.Void{})
}

// Work runs the work phase and counts a completed cycle. Buffers staged
// into this region deliver first, then the work tick fires, so consumer
// logic sees this cycle's values regardless of wiring order.
// Panics if the region is already inside a phase.
func (r *Region) Work() {
	r.enter(PhaseWork)
	defer r.phase.Store(int32(PhaseIdle))
	r.deliver.Fire(connect.Void{})
	r.workTick.Fire(connect.Void{})
	r.cycles.Add(1)
}

// InSwitch returns a callable running the switch phase, for wiring the
// region to an external tick source.
func (r *Region) InSwitch() connect.Func[connect.Void, connect.Void] {
	return connect.Action(r.Switch)
}

// InWork returns a callable running the work phase.
func (r *Region) InWork() connect.Func[connect.Void, connect.Void] {
	return connect.Action(r.Work)
}

func (r *Region) enter(p Phase) {
	if !r.phase.CompareAndSwap(int32(PhaseIdle), int32(p)) {
		panic(fmt.Sprintf("region: %s tick fired during %s phase of %q", p, r.Phase(), r.name))
	}
}

// String implements fmt.Stringer.
func (r *Region) String() string {
	return fmt.Sprintf("%s(%s)", r.name, r.id)
}
