package journal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/tickflow/pkg/tickflow/journal"
)

type storeFactory func(t *testing.T) journal.Store

func entry(t *testing.T, run, series string, cycle int64, v any) journal.Entry {
	t.Helper()
	e, err := journal.NewEntry(run, series, cycle, cycle*10, time.Unix(cycle, 0), v)
	require.NoError(t, err)
	return e
}

// storeContractTest runs the same checks against any Store.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	t.Run(name+"/Append_and_List", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		for cycle := int64(0); cycle < 3; cycle++ {
			got, err := store.Append(entry(t, "run-1", "temp", cycle, float64(cycle)*1.5))
			require.NoError(t, err)
			assert.Equal(t, cycle+1, got.Sequence)
		}

		entries, err := store.List("run-1", "temp")
		require.NoError(t, err)
		require.Len(t, entries, 3)
		for i, e := range entries {
			assert.Equal(t, int64(i+1), e.Sequence)
			assert.Equal(t, int64(i), e.Cycle)
			assert.Equal(t, int64(i*10), e.Ticks)
			assert.True(t, time.Unix(int64(i), 0).Equal(e.SystemTime))
			assert.Equal(t, journal.Version, e.Version)
		}

		v, err := journal.Decode[float64](entries[2])
		require.NoError(t, err)
		assert.Equal(t, 3.0, v)
	})

	t.Run(name+"/List_Empty", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		entries, err := store.List("run-x", "nothing")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run(name+"/Sequences_Per_Series", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.Append(entry(t, "run-1", "a", 0, 1))
		require.NoError(t, err)
		_, err = store.Append(entry(t, "run-1", "a", 1, 2))
		require.NoError(t, err)
		b, err := store.Append(entry(t, "run-1", "b", 1, 3))
		require.NoError(t, err)
		other, err := store.Append(entry(t, "run-2", "a", 0, 4))
		require.NoError(t, err)

		assert.Equal(t, int64(1), b.Sequence)
		assert.Equal(t, int64(1), other.Sequence)

		names, err := store.Series("run-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, names)
	})

	t.Run(name+"/Latest", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.Latest("run-1", "mode")
		assert.ErrorIs(t, err, journal.ErrNotFound)

		_, err = store.Append(entry(t, "run-1", "mode", 0, "idle"))
		require.NoError(t, err)
		_, err = store.Append(entry(t, "run-1", "mode", 1, "busy"))
		require.NoError(t, err)

		latest, err := store.Latest("run-1", "mode")
		require.NoError(t, err)
		assert.Equal(t, int64(2), latest.Sequence)
		mode, err := journal.Decode[string](latest)
		require.NoError(t, err)
		assert.Equal(t, "busy", mode)
	})

	t.Run(name+"/DeleteRun", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.Append(entry(t, "run-1", "a", 0, 1))
		require.NoError(t, err)
		_, err = store.Append(entry(t, "run-2", "a", 0, 1))
		require.NoError(t, err)

		require.NoError(t, store.DeleteRun("run-1"))
		require.NoError(t, store.DeleteRun("run-missing"))

		entries, err := store.List("run-1", "a")
		require.NoError(t, err)
		assert.Empty(t, entries)

		entries, err = store.List("run-2", "a")
		require.NoError(t, err)
		assert.Len(t, entries, 1)

		// sequences restart after the run is gone
		e, err := store.Append(entry(t, "run-1", "a", 5, 1))
		require.NoError(t, err)
		assert.Equal(t, int64(1), e.Sequence)
	})

	t.Run(name+"/DataCopy", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		e := entry(t, "run-1", "s", 0, "original")
		_, err := store.Append(e)
		require.NoError(t, err)
		e.Data[1] = 'X'

		latest, err := store.Latest("run-1", "s")
		require.NoError(t, err)
		assert.JSONEq(t, `"original"`, string(latest.Data))
	})

	t.Run(name+"/Close_ThenError", func(t *testing.T) {
		store := factory(t)
		require.NoError(t, store.Close())

		_, err := store.Append(entry(t, "run-1", "s", 0, 1))
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		_, err = store.List("run-1", "s")
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		_, err = store.Latest("run-1", "s")
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		_, err = store.Series("run-1")
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		assert.ErrorIs(t, store.DeleteRun("run-1"), journal.ErrStoreClosed)
		assert.NoError(t, store.Close(), "close is idempotent")
	})
}

func TestMemoryStore(t *testing.T) {
	storeContractTest(t, "MemoryStore", func(t *testing.T) journal.Store {
		return journal.NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	storeContractTest(t, "SQLiteStore", func(t *testing.T) journal.Store {
		store, err := journal.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return store
	})
}
