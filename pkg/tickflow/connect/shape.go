package connect

import "fmt"

// Shape describes a callable by whether it takes a parameter and whether
// it produces a result.
type Shape struct {
	HasParam  bool
	HasReturn bool
}

// String implements fmt.Stringer.
func (s Shape) String() string {
	return fmt.Sprintf("param=%t return=%t", s.HasParam, s.HasReturn)
}

// ShapeOf derives the shape of Func[P, R].
func ShapeOf[P, R any]() Shape {
	return Shape{HasParam: !isVoid[P](), HasReturn: !isVoid[R]()}
}

// Composed returns the shape of connecting a source of shape s to a sink of
// shape sink: the parameter comes from the source, the result from the sink.
func (s Shape) Composed(sink Shape) Shape {
	return Shape{HasParam: s.HasParam, HasReturn: sink.HasReturn}
}

// CanFeed reports whether a source of shape s may be connected to sink.
// A source without result cannot satisfy a sink that needs a parameter.
func (s Shape) CanFeed(sink Shape) bool {
	return s.HasReturn || !sink.HasParam
}

func isVoid[T any]() bool {
	var zero T
	_, ok := any(zero).(Void)
	return ok
}
