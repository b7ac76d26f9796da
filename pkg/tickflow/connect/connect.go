// Package connect implements the composition algebra used to wire ports and
// plain callables together.
//
// Every connectable reduces to a Func[P, R]. A Void parameter means the
// callable takes nothing, a Void result means it returns nothing. Composing a
// source with a sink yields a new Func whose parameter is the source's and
// whose result is the sink's; the payload in between stays internal.
//
// Whether two callables can be composed is decided by the compiler:
//
//	give := connect.Supplier(func() int { return 1 })
//	inc := connect.Of(func(i int) int { return i + 1 })
//	two := connect.Connect(give, inc) // Func[Void, int]
//	connect.Pull(two)                 // 2
//
// A source without a result cannot feed a sink that needs a parameter: the
// Void payload does not unify with the sink's parameter type, so such a
// connection never builds.
package connect

// Void is the unit payload. It stands in for a missing parameter or result.
type Void struct{}

// Connectable is anything that can sit on either side of a connection.
// Func and every port type implement it.
type Connectable[P, R any] interface {
	Call(P) R
}

// Func is the uniform callable shape.
type Func[P, R any] func(P) R

// Call invokes f.
func (f Func[P, R]) Call(p P) R {
	return f(p)
}

// Shape reports whether f takes a parameter and whether it returns a value.
func (f Func[P, R]) Shape() Shape {
	return ShapeOf[P, R]()
}

// Of lifts a one-parameter function with a result.
func Of[P, R any](fn func(P) R) Func[P, R] {
	if fn == nil {
		panic("connect: nil function")
	}
	return Func[P, R](fn)
}

// Supplier lifts a function without parameter, such as a state getter.
func Supplier[R any](fn func() R) Func[Void, R] {
	if fn == nil {
		panic("connect: nil function")
	}
	return func(Void) R { return fn() }
}

// Consumer lifts a function without result, such as an event handler.
func Consumer[P any](fn func(P)) Func[P, Void] {
	if fn == nil {
		panic("connect: nil function")
	}
	return func(p P) Void {
		fn(p)
		return Void{}
	}
}

// Action lifts a function with neither parameter nor result.
func Action(fn func()) Func[Void, Void] {
	if fn == nil {
		panic("connect: nil function")
	}
	return func(Void) Void {
		fn()
		return Void{}
	}
}

// Connect composes source and sink. The source's result is passed to the
// sink as its argument. If the source has no result (M is Void) the sink
// must not take a parameter either, which makes this plain sequencing.
func Connect[P, M, R any](source Connectable[P, M], sink Connectable[M, R]) Func[P, R] {
	return func(p P) R {
		return sink.Call(source.Call(p))
	}
}

// Then composes source with a sink that takes no parameter. Whatever the
// source returns is discarded.
func Then[P, M, R any](source Connectable[P, M], sink Connectable[Void, R]) Func[P, R] {
	return func(p P) R {
		source.Call(p)
		return sink.Call(Void{})
	}
}

// Pull invokes a callable that takes no parameter and returns its result.
func Pull[R any](c Connectable[Void, R]) R {
	return c.Call(Void{})
}

// Trigger invokes a callable that takes no parameter, ignoring any result.
func Trigger[R any](c Connectable[Void, R]) {
	c.Call(Void{})
}
