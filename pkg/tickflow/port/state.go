package port

import (
	"fmt"

	"github.com/randalmurphal/tickflow/pkg/tickflow/connect"
)

// StateSource is a state-out port. It computes its current value on request.
type StateSource[T any] struct {
	get func() T
}

// NewStateSource creates a state-out port backed by get.
func NewStateSource[T any](get func() T) StateSource[T] {
	if get == nil {
		panic("port: nil state getter")
	}
	return StateSource[T]{get: get}
}

// Capability implements Port.
func (StateSource[T]) Capability() Capability { return StateOut }

// Get returns the current value.
func (s StateSource[T]) Get() T {
	return s.get()
}

// Call implements connect.Connectable.
func (s StateSource[T]) Call(connect.Void) T {
	return s.get()
}

// StateValue holds a value and exposes it through a state-out port.
// It is the usual output of a node that produces state.
type StateValue[T any] struct {
	value T
}

// NewStateValue creates a StateValue holding initial.
func NewStateValue[T any](initial T) *StateValue[T] {
	return &StateValue[T]{value: initial}
}

// Set replaces the held value.
func (v *StateValue[T]) Set(value T) {
	v.value = value
}

// Get returns the held value.
func (v *StateValue[T]) Get() T {
	return v.value
}

// Source returns the state-out port reading v.
func (v *StateValue[T]) Source() StateSource[T] {
	return StateSource[T]{get: v.Get}
}

type stateBinding[T any] struct {
	get func() T
}

// StateSink is a state-in port. It reads through to whatever source was
// bound to it.
type StateSink[T any] struct {
	binding *stateBinding[T]
}

// NewStateSink creates an unbound state-in port.
func NewStateSink[T any]() StateSink[T] {
	return StateSink[T]{binding: &stateBinding[T]{}}
}

// Capability implements Port.
func (StateSink[T]) Capability() Capability { return StateIn }

// Bind connects src to s, replacing any previous binding.
func (s StateSink[T]) Bind(src connect.Connectable[connect.Void, T]) {
	if s.binding == nil {
		panic("port: state sink not initialized")
	}
	s.binding.get = func() T { return src.Call(connect.Void{}) }
}

// Connected reports whether a source is bound.
func (s StateSink[T]) Connected() bool {
	return s.binding != nil && s.binding.get != nil
}

// Get pulls the current value from the bound source. Reading an unbound
// sink is a wiring bug and panics with ErrUnbound.
func (s StateSink[T]) Get() T {
	if !s.Connected() {
		panic(fmt.Errorf("port: %w", ErrUnbound))
	}
	return s.binding.get()
}

// Lookup is like Get but reports false instead of panicking when unbound.
func (s StateSink[T]) Lookup() (T, bool) {
	if !s.Connected() {
		var zero T
		return zero, false
	}
	return s.binding.get(), true
}

// Call implements connect.Connectable, so a sink can feed further chains.
func (s StateSink[T]) Call(connect.Void) T {
	return s.Get()
}

// ConnectState binds sink to src.
func ConnectState[T any](src connect.Connectable[connect.Void, T], sink StateSink[T]) {
	sink.Bind(src)
}
