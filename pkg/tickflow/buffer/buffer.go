// Package buffer implements the staging cells that carry data between
// regions.
//
// A staged buffer sits between a producer in one region and a consumer in
// another. Commit runs on the producer region's switch tick and makes the
// latest production visible to the consumer side. Deliver runs on the
// consumer region's work tick and hands the committed data over. The
// commit/deliver pair is the only synchronization point between the two
// regions.
//
// State buffers keep a single slot: only the most recent value survives a
// commit. Event buffers keep every event in FIFO order.
package buffer

import (
	"sync/atomic"
)

// Policy selects how a connection between two region-aware endpoints is
// built.
type Policy int

const (
	// Direct invokes the sink straight from the source, with no staging.
	Direct Policy = iota
	// Staged routes data through a buffer committed on the producer's
	// switch tick and delivered on the consumer's work tick.
	Staged
)

// The buffering policy. Endpoints inside one region are already serialized
// by that region's tick order; endpoints in different regions may run on
// different goroutines and must be phase separated.
const (
	SameRegionPolicy  = Direct
	CrossRegionPolicy = Staged
)

// Decide maps the "same region" predicate to a policy.
func Decide(sameRegion bool) Policy {
	if sameRegion {
		return SameRegionPolicy
	}
	return CrossRegionPolicy
}

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case Direct:
		return "direct"
	case Staged:
		return "staged"
	default:
		return "unknown"
	}
}

// Buffer is the phase interface shared by state and event buffers.
type Buffer interface {
	// Commit is wired to the producer region's switch tick.
	Commit()
	// Deliver is wired to the consumer region's work tick.
	Deliver()
	// Stats returns commit and delivery counters.
	Stats() Stats
}

// Stats counts buffer activity. Commits and Deliveries count tick
// invocations; Items counts values or events handed to the consumer.
type Stats struct {
	Commits    int64
	Deliveries int64
	Items      int64
}

type counters struct {
	commits    atomic.Int64
	deliveries atomic.Int64
	items      atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Commits:    c.commits.Load(),
		Deliveries: c.deliveries.Load(),
		Items:      c.items.Load(),
	}
}
