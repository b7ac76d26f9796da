package buffer

import "sync"

// Events stages pushed events. Push and Commit belong to the producer
// region, Deliver to the consumer region. Events keep their firing order.
type Events[T any] struct {
	deliver func(T)

	// producer side only
	pending []T

	mu        sync.Mutex
	committed []T

	counters
}

// Compile-time interface check.
var _ Buffer = (*Events[int])(nil)

// NewEvents creates an event buffer handing delivered events to deliver.
func NewEvents[T any](deliver func(T)) *Events[T] {
	if deliver == nil {
		panic("buffer: nil event consumer")
	}
	return &Events[T]{deliver: deliver}
}

// Push queues v until the next commit.
func (b *Events[T]) Push(v T) {
	b.pending = append(b.pending, v)
}

// Commit moves everything pushed since the last commit to the consumer
// side. Committed events that were not delivered yet are kept.
func (b *Events[T]) Commit() {
	b.commits.Add(1)
	if len(b.pending) == 0 {
		return
	}
	b.mu.Lock()
	b.committed = append(b.committed, b.pending...)
	b.mu.Unlock()

	clear(b.pending)
	b.pending = b.pending[:0]
}

// Deliver hands every committed event to the consumer, oldest first.
func (b *Events[T]) Deliver() {
	b.deliveries.Add(1)

	b.mu.Lock()
	batch := b.committed
	b.committed = nil
	b.mu.Unlock()

	for _, v := range batch {
		b.deliver(v)
	}
	b.items.Add(int64(len(batch)))
}

// Pending returns the number of pushed events not yet committed.
func (b *Events[T]) Pending() int {
	return len(b.pending)
}

// Stats implements Buffer.
func (b *Events[T]) Stats() Stats {
	return b.snapshot()
}
