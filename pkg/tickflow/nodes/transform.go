// Package nodes is a small library of generic nodes built on the port API.
//
// None of these nodes know about regions or ticks. Bind their ports to a
// region with region.Bind to let connections to them be staged.
package nodes

import (
	"github.com/randalmurphal/tickflow/pkg/tickflow/connect"
	"github.com/randalmurphal/tickflow/pkg/tickflow/port"
	"github.com/randalmurphal/tickflow/pkg/tickflow/settings"
)

// TransformNode applies a binary operation to every input, using the state
// on its parameter port as the second operand.
type TransformNode[In, P, Out any] struct {
	op    func(In, P) Out
	param port.StateSink[P]
}

var _ connect.Connectable[int, int] = (*TransformNode[int, int, int])(nil)

// Transform creates a TransformNode for op. Its parameter port must be bound
// before the first call.
func Transform[In, P, Out any](op func(In, P) Out) *TransformNode[In, P, Out] {
	if op == nil {
		panic("nodes: nil transform operation")
	}
	return &TransformNode[In, P, Out]{op: op, param: port.NewStateSink[P]()}
}

// TransformSetting creates a TransformNode whose parameter is the setting
// key resolved against b, falling back to initial.
func TransformSetting[In, P, Out any](op func(In, P) Out, b settings.Backend, key string, initial P, opts ...settings.Option) *TransformNode[In, P, Out] {
	n := Transform(op)
	n.param.Bind(settings.New(b, key, initial, opts...).Source())
	return n
}

// Param returns the parameter port.
func (n *TransformNode[In, P, Out]) Param() port.StateSink[P] { return n.param }

// Call implements connect.Connectable.
func (n *TransformNode[In, P, Out]) Call(in In) Out {
	return n.op(in, n.param.Get())
}
