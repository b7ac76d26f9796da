package nodes

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/tickflow/pkg/tickflow/port"
)

// ErrNoInput is raised when a state switch is read while its control port
// selects a key without a connected input.
var ErrNoInput = errors.New("no input for selected key")

// StateSwitch forwards the state of one of several inputs. The input is
// chosen by the state on the control port.
type StateSwitch[K comparable, T any] struct {
	control port.StateSink[K]
	inputs  map[K]port.StateSink[T]
}

// NewStateSwitch creates a switch without inputs.
func NewStateSwitch[K comparable, T any]() *StateSwitch[K, T] {
	return &StateSwitch[K, T]{
		control: port.NewStateSink[K](),
		inputs:  make(map[K]port.StateSink[T]),
	}
}

// In returns the input port for key, creating it on first use.
func (s *StateSwitch[K, T]) In(key K) port.StateSink[T] {
	in, ok := s.inputs[key]
	if !ok {
		in = port.NewStateSink[T]()
		s.inputs[key] = in
	}
	return in
}

// Control returns the port selecting the forwarded input.
func (s *StateSwitch[K, T]) Control() port.StateSink[K] { return s.control }

// Out returns the output port. Reading it panics with ErrNoInput if the
// selected key has no input.
func (s *StateSwitch[K, T]) Out() port.StateSource[T] {
	return port.NewStateSource(s.get)
}

// Lookup returns the selected input's state, or false if there is none.
func (s *StateSwitch[K, T]) Lookup() (T, bool) {
	in, ok := s.inputs[s.control.Get()]
	if !ok {
		var zero T
		return zero, false
	}
	return in.Lookup()
}

func (s *StateSwitch[K, T]) get() T {
	key := s.control.Get()
	in, ok := s.inputs[key]
	if !ok || !in.Connected() {
		panic(fmt.Errorf("nodes: switch key %v: %w", key, ErrNoInput))
	}
	return in.Get()
}

// EventSwitch forwards events arriving on the input selected by the
// control port and drops events from every other input.
type EventSwitch[K comparable, T any] struct {
	control port.StateSink[K]
	inputs  map[K]port.EventSink[T]
	out     port.EventSource[T]
}

// NewEventSwitch creates a switch without inputs.
func NewEventSwitch[K comparable, T any]() *EventSwitch[K, T] {
	return &EventSwitch[K, T]{
		control: port.NewStateSink[K](),
		inputs:  make(map[K]port.EventSink[T]),
		out:     port.NewEventSource[T](),
	}
}

// In returns the input port for key, creating it on first use.
func (s *EventSwitch[K, T]) In(key K) port.EventSink[T] {
	in, ok := s.inputs[key]
	if !ok {
		in = port.NewEventSink(func(v T) {
			if s.control.Get() == key {
				s.out.Fire(v)
			}
		})
		s.inputs[key] = in
	}
	return in
}

// Control returns the port selecting the forwarded input.
func (s *EventSwitch[K, T]) Control() port.StateSink[K] { return s.control }

// Out returns the output port.
func (s *EventSwitch[K, T]) Out() port.EventSource[T] { return s.out }
