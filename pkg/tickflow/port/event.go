package port

import "github.com/randalmurphal/tickflow/pkg/tickflow/connect"

type eventHandlers[T any] struct {
	handlers []func(T)
}

// EventSource is an event-out port. Firing it calls every subscribed handler
// synchronously, in subscription order.
type EventSource[T any] struct {
	core *eventHandlers[T]
}

// NewEventSource creates an event-out port without subscribers.
func NewEventSource[T any]() EventSource[T] {
	return EventSource[T]{core: &eventHandlers[T]{}}
}

// Capability implements Port.
func (EventSource[T]) Capability() Capability { return EventOut }

// Fire delivers v to all subscribers.
func (s EventSource[T]) Fire(v T) {
	if s.core == nil {
		return
	}
	for _, h := range s.core.handlers {
		h(v)
	}
}

// Subscribe registers h. Panics if s was not created with NewEventSource.
func (s EventSource[T]) Subscribe(h func(T)) {
	if s.core == nil {
		panic("port: event source not initialized")
	}
	if h == nil {
		panic("port: nil event handler")
	}
	s.core.handlers = append(s.core.handlers, h)
}

// Subscribers returns the number of registered handlers.
func (s EventSource[T]) Subscribers() int {
	if s.core == nil {
		return 0
	}
	return len(s.core.handlers)
}

// EventSink is an event-in port wrapping a handler.
type EventSink[T any] struct {
	handle func(T)
}

// NewEventSink creates an event-in port calling h for every event.
func NewEventSink[T any](h func(T)) EventSink[T] {
	if h == nil {
		panic("port: nil event handler")
	}
	return EventSink[T]{handle: h}
}

// Capability implements Port.
func (EventSink[T]) Capability() Capability { return EventIn }

// Receive handles v.
func (s EventSink[T]) Receive(v T) {
	s.handle(v)
}

// Call implements connect.Connectable.
func (s EventSink[T]) Call(v T) connect.Void {
	s.handle(v)
	return connect.Void{}
}

// ConnectEvent subscribes sink to src. Any result of sink is discarded,
// since events have nobody to return to.
func ConnectEvent[T, R any](src EventSource[T], sink connect.Connectable[T, R]) {
	src.Subscribe(func(v T) { sink.Call(v) })
}
