package journal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/tickflow/pkg/tickflow/journal"
)

func TestMemoryStore_Len(t *testing.T) {
	store := journal.NewMemoryStore()
	assert.Equal(t, 0, store.Len())

	for i := int64(0); i < 3; i++ {
		_, err := store.Append(entry(t, "run-1", "a", i, i))
		require.NoError(t, err)
	}
	_, err := store.Append(entry(t, "run-2", "b", 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 4, store.Len())

	require.NoError(t, store.DeleteRun("run-1"))
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Close())
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_ListIsCopy(t *testing.T) {
	store := journal.NewMemoryStore()
	_, err := store.Append(entry(t, "run-1", "s", 0, "abc"))
	require.NoError(t, err)

	entries, err := store.List("run-1", "s")
	require.NoError(t, err)
	entries[0].Data[1] = 'X'
	entries[0].Cycle = 99

	again, err := store.List("run-1", "s")
	require.NoError(t, err)
	assert.JSONEq(t, `"abc"`, string(again[0].Data))
	assert.Equal(t, int64(0), again[0].Cycle)
}
