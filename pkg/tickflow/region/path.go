package region

import (
	"github.com/randalmurphal/tickflow/pkg/tickflow/buffer"
	"github.com/randalmurphal/tickflow/pkg/tickflow/connect"
	"github.com/randalmurphal/tickflow/pkg/tickflow/port"
)

// EventPath is an open, region-aware event connection: an event source
// followed by zero or more plain callables. It carries the producer region
// forward so that the buffering decision can be made when the path reaches
// its sink, however many hops later.
type EventPath[T any] struct {
	attach   func(func(T))
	source   ref
	buffered bool
}

// Events starts a path at a region-aware event source.
func Events[T any](src Aware[port.EventSource[T]]) EventPath[T] {
	return EventPath[T]{attach: src.Port.Subscribe, source: src.region}
}

// EventsOf starts a path at a plain event source. Connections from it are
// never buffered.
func EventsOf[T any](src port.EventSource[T]) EventPath[T] {
	return EventPath[T]{attach: src.Subscribe}
}

// PipeEvents extends p with f. The result keeps p's region, so chaining
// stays region-aware.
func PipeEvents[T, U any](p EventPath[T], f connect.Connectable[T, U]) EventPath[U] {
	attach := p.attach
	return EventPath[U]{
		attach: func(h func(U)) {
			attach(func(v T) { h(f.Call(v)) })
		},
		source:   p.source,
		buffered: p.buffered,
	}
}

// Region returns the region events on this path are produced in, or nil.
func (p EventPath[T]) Region() *Region { return p.source.get() }

// Buffered reports whether the path already passes through a buffer.
func (p EventPath[T]) Buffered() bool { return p.buffered }

// Stage routes the path through an event buffer into region to. Callables
// piped after Stage run during to's work phase. Staging toward the producer
// region itself is a no-op. Panics if the path has no producer region or is
// already staged elsewhere.
func (p EventPath[T]) Stage(to *Region) EventPath[T] {
	if to == nil {
		panic("region: cannot stage into nil region")
	}
	if !p.source.set {
		panic(&WiringError{To: to.name, Err: ErrNoSourceRegion})
	}
	dst := refTo(to)
	if decide(p.source, dst, p.buffered) == buffer.Direct {
		return p
	}
	fanout := port.NewEventSource[T]()
	b := buffer.NewEvents(fanout.Fire)
	p.attach(b.Push)
	stage(b, p.source.get(), to)
	return EventPath[T]{attach: fanout.Subscribe, source: dst, buffered: true}
}

// Into terminates the path at a region-aware event sink, staging it if the
// sink lives in another region.
func (p EventPath[T]) Into(sink Aware[port.EventSink[T]]) *Connection {
	c := &Connection{
		policy:   decide(p.source, sink.region, p.buffered),
		source:   p.source,
		sink:     sink.region,
		buffered: p.buffered,
	}
	if c.policy == buffer.Staged {
		b := buffer.NewEvents(sink.Port.Receive)
		p.attach(b.Push)
		stage(b, p.source.get(), sink.region.get())
		c.buf = b
		c.buffered = true
		return c
	}
	p.attach(sink.Port.Receive)
	return c
}

// To terminates the path at a plain callable. No buffer is inserted.
func (p EventPath[T]) To(sink connect.Connectable[T, connect.Void]) *Connection {
	p.attach(func(v T) { sink.Call(v) })
	return &Connection{policy: buffer.Direct, source: p.source, buffered: p.buffered}
}

// StatePath is an open, region-aware state connection: a state source
// followed by zero or more plain callables. Reading it pulls through the
// whole chain.
type StatePath[T any] struct {
	get      func() T
	source   ref
	buffered bool
}

// States starts a path at a region-aware state source.
func States[T any](src Aware[port.StateSource[T]]) StatePath[T] {
	return StatePath[T]{get: src.Port.Get, source: src.region}
}

// StatesOf starts a path at any plain callable producing T.
func StatesOf[T any](src connect.Connectable[connect.Void, T]) StatePath[T] {
	return StatePath[T]{get: func() T { return src.Call(connect.Void{}) }}
}

// PipeState extends p with f, keeping p's region.
func PipeState[T, U any](p StatePath[T], f connect.Connectable[T, U]) StatePath[U] {
	get := p.get
	return StatePath[U]{
		get:      func() U { return f.Call(get()) },
		source:   p.source,
		buffered: p.buffered,
	}
}

// Call implements connect.Connectable by pulling the current value.
func (p StatePath[T]) Call(connect.Void) T { return p.get() }

// Region returns the region the value is produced in, or nil.
func (p StatePath[T]) Region() *Region { return p.source.get() }

// Buffered reports whether the path already passes through a buffer.
func (p StatePath[T]) Buffered() bool { return p.buffered }

// Stage routes the path through a state buffer into region to. Callables
// piped after Stage see the value delivered on to's last work tick.
func (p StatePath[T]) Stage(to *Region) StatePath[T] {
	if to == nil {
		panic("region: cannot stage into nil region")
	}
	if !p.source.set {
		panic(&WiringError{To: to.name, Err: ErrNoSourceRegion})
	}
	dst := refTo(to)
	if decide(p.source, dst, p.buffered) == buffer.Direct {
		return p
	}
	b := buffer.NewState(p.get)
	stage(b, p.source.get(), to)
	return StatePath[T]{get: b.Get, source: dst, buffered: true}
}

// Into terminates the path at a region-aware state sink, staging it if the
// sink lives in another region.
func (p StatePath[T]) Into(sink Aware[port.StateSink[T]]) *Connection {
	c := &Connection{
		policy:   decide(p.source, sink.region, p.buffered),
		source:   p.source,
		sink:     sink.region,
		buffered: p.buffered,
	}
	if c.policy == buffer.Staged {
		b := buffer.NewState(p.get)
		stage(b, p.source.get(), sink.region.get())
		sink.Port.Bind(connect.Supplier(b.Get))
		c.buf = b
		c.buffered = true
		return c
	}
	sink.Port.Bind(connect.Supplier(p.get))
	return c
}

// To terminates the path at a plain state sink. No buffer is inserted.
func (p StatePath[T]) To(sink port.StateSink[T]) *Connection {
	sink.Bind(connect.Supplier(p.get))
	return &Connection{policy: buffer.Direct, source: p.source, buffered: p.buffered}
}
