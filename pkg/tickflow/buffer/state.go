package buffer

import "sync/atomic"

// State stages a pulled state value. The producer side is a getter read on
// commit; the consumer side reads the delivered value with Get.
type State[T any] struct {
	source  func() T
	staged  atomic.Pointer[T]
	visible atomic.Pointer[T]
	counters
}

// Compile-time interface check.
var _ Buffer = (*State[int])(nil)

// NewState creates a state buffer reading source on every commit.
func NewState[T any](source func() T) *State[T] {
	if source == nil {
		panic("buffer: nil state source")
	}
	return &State[T]{source: source}
}

// Commit reads the producer's current value into the staging slot,
// replacing anything committed earlier and not yet delivered.
func (b *State[T]) Commit() {
	v := b.source()
	b.staged.Store(&v)
	b.commits.Add(1)
}

// Deliver publishes the last committed value to the consumer side.
func (b *State[T]) Deliver() {
	b.deliveries.Add(1)
	if v := b.staged.Load(); v != nil {
		b.visible.Store(v)
		b.items.Add(1)
	}
}

// Get returns the delivered value, or the zero value before the first
// delivery.
func (b *State[T]) Get() T {
	v, _ := b.Lookup()
	return v
}

// Lookup returns the delivered value and whether any delivery happened.
func (b *State[T]) Lookup() (T, bool) {
	if v := b.visible.Load(); v != nil {
		return *v, true
	}
	var zero T
	return zero, false
}

// Stats implements Buffer.
func (b *State[T]) Stats() Stats {
	return b.snapshot()
}
