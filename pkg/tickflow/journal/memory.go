package journal

import (
	"slices"
	"sync"
)

// MemoryStore keeps entries in memory. Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[string]map[string][]Entry // runID -> series -> entries
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]map[string][]Entry)}
}

// Append implements Store.
func (m *MemoryStore) Append(e Entry) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Entry{}, ErrStoreClosed
	}

	run := m.runs[e.RunID]
	if run == nil {
		run = make(map[string][]Entry)
		m.runs[e.RunID] = run
	}
	e.Sequence = int64(len(run[e.Series])) + 1
	e.Data = slices.Clone(e.Data)
	run[e.Series] = append(run[e.Series], e)
	return e, nil
}

// List implements Store.
func (m *MemoryStore) List(runID, series string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	stored := m.runs[runID][series]
	out := make([]Entry, len(stored))
	for i, e := range stored {
		e.Data = slices.Clone(e.Data)
		out[i] = e
	}
	return out, nil
}

// Latest implements Store.
func (m *MemoryStore) Latest(runID, series string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Entry{}, ErrStoreClosed
	}

	stored := m.runs[runID][series]
	if len(stored) == 0 {
		return Entry{}, ErrNotFound
	}
	e := stored[len(stored)-1]
	e.Data = slices.Clone(e.Data)
	return e, nil
}

// Series implements Store.
func (m *MemoryStore) Series(runID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	names := make([]string, 0, len(m.runs[runID]))
	for name := range m.runs[runID] {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// DeleteRun implements Store.
func (m *MemoryStore) DeleteRun(runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.runs, runID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.runs = nil
	return nil
}

// Len returns the number of entries across all runs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, run := range m.runs {
		for _, entries := range run {
			n += len(entries)
		}
	}
	return n
}
