package cli

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// Golden files live in testdata. Regenerate with:
//
//	go test ./internal/cli -run Golden -update
func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestClockGolden(t *testing.T) {
	out, err := runClockCmd(t, "text", "--ticks", "3", "--resolution", "250ms")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "clock_text", []byte(out))
}

func TestSimulateGolden(t *testing.T) {
	out, _, err := runSimulateCmd(t, "text",
		"--run-id", "golden",
		"--alert", "value >= 18",
		"--journal", filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	newGoldie(t).Assert(t, "simulate_text", []byte(out))
}
