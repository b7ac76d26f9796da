package tickflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for running the scheduler.
var (
	// ErrNilContext indicates Step or Run was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrNoSteps indicates Run was asked for zero or fewer steps.
	ErrNoSteps = errors.New("step count must be positive")

	// ErrTickPanicked is matched by every PanicError.
	ErrTickPanicked = errors.New("tick panicked")
)

// PanicError captures a panic raised while a region ticked.
type PanicError struct {
	// Region is the name of the region whose tick panicked.
	Region string
	// Phase is "switch" or "work".
	Phase string
	// Step is the scheduler step the panic happened in.
	Step int64
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("region %s: %s tick panicked at step %d: %v", e.Region, e.Phase, e.Step, e.Value)
}

// Unwrap returns the panic value if it is an error, so wiring and lifetime
// errors raised inside ticks stay matchable with errors.Is.
func (e *PanicError) Unwrap() []error {
	if err, ok := e.Value.(error); ok {
		return []error{ErrTickPanicked, err}
	}
	return []error{ErrTickPanicked}
}

// CancellationError reports a run stopped by its context.
type CancellationError struct {
	// Step is the number of steps completed before cancellation.
	Step int64
	// Cause is context.Canceled or context.DeadlineExceeded.
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled after step %d: %v", e.Step, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}
