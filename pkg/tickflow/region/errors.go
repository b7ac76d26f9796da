package region

import (
	"errors"
	"fmt"
)

// Sentinel errors for region-aware wiring. They are raised as panics: each
// one means the graph was built wrong, not that something failed at runtime.
var (
	// ErrRegionExpired indicates a port outlived the region it was bound to.
	ErrRegionExpired = errors.New("region expired")

	// ErrDoubleBuffer indicates a second buffer would be stacked on a path
	// that is already staged.
	ErrDoubleBuffer = errors.New("connection already buffered")

	// ErrNoSourceRegion indicates a path without producer region was staged.
	ErrNoSourceRegion = errors.New("path has no source region")
)

// LifetimeError reports access to an expired region.
type LifetimeError struct {
	// ID is the identity the region had.
	ID ID
	// Name is the name the region had.
	Name string
}

// Error implements the error interface.
func (e *LifetimeError) Error() string {
	return fmt.Sprintf("region %q (%s): %v", e.Name, e.ID, ErrRegionExpired)
}

// Unwrap returns ErrRegionExpired for errors.Is support.
func (e *LifetimeError) Unwrap() error {
	return ErrRegionExpired
}

// WiringError reports a connection that cannot be built.
type WiringError struct {
	// From is the producer region name, empty if none.
	From string
	// To is the consumer region name, empty if none.
	To string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *WiringError) Error() string {
	return fmt.Sprintf("wire %q -> %q: %v", e.From, e.To, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *WiringError) Unwrap() error {
	return e.Err
}
