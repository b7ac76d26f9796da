// Package journal records sampled state of a running graph, cycle by cycle,
// for later inspection or replay.
package journal

import (
	"errors"
)

// Store persists journal entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores e and returns it with its Sequence assigned.
	Append(e Entry) (Entry, error)

	// List returns all entries of a series in a run, ordered by sequence.
	// Returns an empty slice (not error) if there are none.
	List(runID, series string) ([]Entry, error)

	// Latest returns the last entry of a series.
	// Returns ErrNotFound if the series is empty.
	Latest(runID, series string) (Entry, error)

	// Series returns the names of the series recorded in a run, sorted.
	Series(runID string) ([]string, error)

	// DeleteRun removes all entries of a run.
	// Returns nil if the run has no entries.
	DeleteRun(runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for journal operations.
var (
	// ErrNotFound indicates a series has no entries.
	ErrNotFound = errors.New("journal entry not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")
)
