package journal

import (
	"encoding/json"
	"fmt"
	"time"
)

// Version is the current entry format version.
const Version = 1

// Entry is one recorded sample of a state series.
type Entry struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Series  string `json:"series"`

	// Sequence numbers entries per (RunID, Series), starting at 1. It is
	// assigned by the Store on Append.
	Sequence int64 `json:"sequence"`

	// Cycle is the number of completed work phases of the sampling region
	// when the sample was taken.
	Cycle int64 `json:"cycle"`

	// Ticks and SystemTime are the virtual clock reading at sampling time.
	Ticks      int64     `json:"ticks"`
	SystemTime time.Time `json:"system_time"`

	Data json.RawMessage `json:"data"`
}

// NewEntry encodes value as JSON into a new entry.
func NewEntry(runID, series string, cycle, ticks int64, at time.Time, value any) (Entry, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Entry{}, fmt.Errorf("encode %s sample: %w", series, err)
	}
	return Entry{
		Version:    Version,
		RunID:      runID,
		Series:     series,
		Cycle:      cycle,
		Ticks:      ticks,
		SystemTime: at.UTC(),
		Data:       data,
	}, nil
}

// Marshal serializes the entry to JSON.
func (e Entry) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal deserializes an entry from JSON.
func Unmarshal(data []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Decode unmarshals the sample carried by e.
func Decode[T any](e Entry) (T, error) {
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return v, fmt.Errorf("decode %s sample %d: %w", e.Series, e.Sequence, err)
	}
	return v, nil
}
