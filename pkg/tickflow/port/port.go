// Package port provides the typed endpoints nodes expose to each other.
//
// There are four capabilities:
//
//	EventSource (event-out)  fires values to every subscribed handler
//	EventSink   (event-in)   handles values pushed to it
//	StateSource (state-out)  provides a current value on request
//	StateSink   (state-in)   pulls the current value from its bound source
//
// All port types implement connect.Connectable, so they compose with plain
// callables through connect.Connect. Port values are cheap handles: copies
// share the underlying subscriptions or bindings.
package port

import (
	"errors"

	"github.com/randalmurphal/tickflow/pkg/tickflow/connect"
)

// Capability identifies what a port does. It is fixed for the port's lifetime.
type Capability string

// Port capabilities.
const (
	EventIn  Capability = "event-in"
	EventOut Capability = "event-out"
	StateIn  Capability = "state-in"
	StateOut Capability = "state-out"
)

// IsEvent reports whether c transmits events rather than state.
func (c Capability) IsEvent() bool {
	return c == EventIn || c == EventOut
}

// IsInput reports whether c consumes data.
func (c Capability) IsInput() bool {
	return c == EventIn || c == StateIn
}

// Port is implemented by every endpoint.
type Port interface {
	Capability() Capability
}

// ErrUnbound indicates a state sink was read before any source was bound.
var ErrUnbound = errors.New("state sink not connected")

// Compile-time interface checks.
var (
	_ Port                                   = EventSource[int]{}
	_ Port                                   = EventSink[int]{}
	_ Port                                   = StateSource[int]{}
	_ Port                                   = StateSink[int]{}
	_ connect.Connectable[int, connect.Void] = EventSink[int]{}
	_ connect.Connectable[connect.Void, int] = StateSource[int]{}
	_ connect.Connectable[connect.Void, int] = StateSink[int]{}
)
