package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists entries to SQLite.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens or creates a journal database at path.
// Use ":memory:" for a throwaway store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive and serializes
	// writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS samples (
			run_id TEXT NOT NULL,
			series TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			version INTEGER NOT NULL,
			cycle INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			system_time TEXT NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (run_id, series, sequence)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Entry{}, ErrStoreClosed
	}

	err := s.db.QueryRow(`
		INSERT INTO samples (run_id, series, sequence, version, cycle, ticks, system_time, data)
		VALUES (
			?, ?,
			COALESCE((SELECT MAX(sequence) FROM samples WHERE run_id = ? AND series = ?), 0) + 1,
			?, ?, ?, ?, ?
		)
		RETURNING sequence
	`, e.RunID, e.Series, e.RunID, e.Series,
		e.Version, e.Cycle, e.Ticks, e.SystemTime.UTC().Format(time.RFC3339Nano), []byte(e.Data),
	).Scan(&e.Sequence)
	if err != nil {
		return Entry{}, fmt.Errorf("append sample: %w", err)
	}
	return e, nil
}

const selectEntry = `
	SELECT run_id, series, sequence, version, cycle, ticks, system_time, data
	FROM samples
`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e    Entry
		at   string
		data []byte
	)
	if err := row.Scan(&e.RunID, &e.Series, &e.Sequence, &e.Version, &e.Cycle, &e.Ticks, &at, &data); err != nil {
		return Entry{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return Entry{}, fmt.Errorf("parse system time %q: %w", at, err)
	}
	e.SystemTime = t
	e.Data = data
	return e, nil
}

// List implements Store.
func (s *SQLiteStore) List(runID, series string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(selectEntry+`
		WHERE run_id = ? AND series = ?
		ORDER BY sequence
	`, runID, series)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return entries, nil
}

// Latest implements Store.
func (s *SQLiteStore) Latest(runID, series string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Entry{}, ErrStoreClosed
	}

	e, err := scanEntry(s.db.QueryRow(selectEntry+`
		WHERE run_id = ? AND series = ?
		ORDER BY sequence DESC
		LIMIT 1
	`, runID, series))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("load latest sample: %w", err)
	}
	return e, nil
}

// Series implements Store.
func (s *SQLiteStore) Series(runID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT DISTINCT series FROM samples
		WHERE run_id = ?
		ORDER BY series
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series: %w", err)
	}
	return names, nil
}

// DeleteRun implements Store.
func (s *SQLiteStore) DeleteRun(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM samples WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete run samples: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
