package nodes

import (
	"github.com/randalmurphal/tickflow/pkg/tickflow/condition"
	"github.com/randalmurphal/tickflow/pkg/tickflow/connect"
	"github.com/randalmurphal/tickflow/pkg/tickflow/port"
)

// WatchNode samples a state on every check tick and fires the sampled
// value as an event when the predicate holds.
type WatchNode[T any] struct {
	pred func(T) bool
	in   port.StateSink[T]
	out  port.EventSource[T]
}

// Watch creates a WatchNode testing pred.
func Watch[T any](pred func(T) bool) *WatchNode[T] {
	if pred == nil {
		panic("nodes: nil watch predicate")
	}
	return &WatchNode[T]{
		pred: pred,
		in:   port.NewStateSink[T](),
		out:  port.NewEventSource[T](),
	}
}

// OnChanged creates a WatchNode firing whenever the state differs from the
// previous sample. The first sample never fires.
func OnChanged[T comparable]() *WatchNode[T] {
	var (
		last    T
		sampled bool
	)
	return Watch(func(v T) bool {
		changed := sampled && v != last
		last, sampled = v, true
		return changed
	})
}

// WatchCondition creates a WatchNode firing when c matches the sample. The
// condition sees the sample as value. A map[string]any sample also exposes
// its keys directly.
func WatchCondition[T any](c *condition.Condition) *WatchNode[T] {
	if c == nil {
		panic("nodes: nil watch condition")
	}
	return Watch(func(v T) bool {
		vars := map[string]any{"value": v}
		if m, ok := any(v).(map[string]any); ok {
			for k, x := range m {
				if k != "value" {
					vars[k] = x
				}
			}
		}
		return c.Match(vars)
	})
}

// In returns the watched state port.
func (w *WatchNode[T]) In() port.StateSink[T] { return w.in }

// Out returns the event port.
func (w *WatchNode[T]) Out() port.EventSource[T] { return w.out }

// Check samples the input once.
func (w *WatchNode[T]) Check() {
	v := w.in.Get()
	if w.pred(v) {
		w.out.Fire(v)
	}
}

// CheckTick returns the event port triggering Check, usually subscribed to
// a region's work tick.
func (w *WatchNode[T]) CheckTick() port.EventSink[connect.Void] {
	return port.NewEventSink(func(connect.Void) { w.Check() })
}
