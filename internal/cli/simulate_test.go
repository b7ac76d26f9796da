package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/tickflow/pkg/tickflow/journal"
)

func runSimulateCmd(t *testing.T, format string, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewSimulateCommand(&RootOptions{Format: format})
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSimulateDefaults(t *testing.T) {
	out, _, err := runSimulateCmd(t, "text", "--run-id", "demo")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	// the consumer sees 4, 9, 14, 19, 4, 9, 14, 19 on ticks 5..40
	assert.Contains(t, lines[0], "step 15")
	assert.Contains(t, lines[0], "150ms")
	assert.Contains(t, lines[0], "high")
	assert.Contains(t, lines[1], "step 25")
	assert.Contains(t, lines[1], "low")
	assert.Contains(t, lines[2], "step 35")
	assert.Contains(t, lines[2], "high")
	assert.Equal(t, "run demo: 40 steps, 3 events, 0 samples recorded", lines[3])
}

func TestSimulateParallelMatchesSequential(t *testing.T) {
	seq, _, err := runSimulateCmd(t, "text", "--run-id", "r")
	require.NoError(t, err)
	par, _, err := runSimulateCmd(t, "text", "--run-id", "r", "--parallel")
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestSimulateJSON(t *testing.T) {
	out, _, err := runSimulateCmd(t, "json", "--steps", "20")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var ev simEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Equal(t, simEvent{Step: 15, Elapsed: "150ms", Kind: "level", Value: "high"}, ev)

	var summary simulateSummary
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &summary))
	assert.Equal(t, int64(20), summary.Steps)
	assert.Equal(t, 1, summary.Events)
	assert.NotEmpty(t, summary.RunID)
}

func TestSimulateConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
producer:
  step: 1
  period: 4
consumer:
  rate: 1
  threshold: 2
clock:
  resolution: 1s
`), 0o600))

	out, _, err := runSimulateCmd(t, "json", "--config", path, "--steps", "8")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	var levels []string
	var steps []int64
	for _, line := range lines[:len(lines)-1] {
		var ev simEvent
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		levels = append(levels, ev.Value)
		steps = append(steps, ev.Step)
	}
	// the consumer sees the wave one tick late: 0 1 2 3 0 1 2 3
	assert.Equal(t, []string{"high", "low", "high"}, levels)
	assert.Equal(t, []int64{3, 5, 7}, steps)
}

func TestSimulateAlert(t *testing.T) {
	out, _, err := runSimulateCmd(t, "json", "--alert", "value >= 18")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)

	var alerts []simEvent
	for _, line := range lines[:5] {
		var ev simEvent
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		if ev.Kind == "alert" {
			alerts = append(alerts, ev)
		}
	}
	require.Len(t, alerts, 2)
	assert.Equal(t, simEvent{Step: 20, Elapsed: "200ms", Kind: "alert", Value: "19"}, alerts[0])
	assert.Equal(t, int64(40), alerts[1].Step)
}

func TestSimulateAlertFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"consumer": {"alert": "value == 4"}}`), 0o600))

	out, _, err := runSimulateCmd(t, "text", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "alert 4"))
}

func TestSimulateJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	out, _, err := runSimulateCmd(t, "text", "--run-id", "run-1", "--journal", path)
	require.NoError(t, err)
	assert.Contains(t, out, "8 samples recorded")

	store, err := journal.NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.List("run-1", "wave")
	require.NoError(t, err)
	require.Len(t, entries, 8)

	var wave []int
	for _, e := range entries {
		v, err := journal.Decode[int](e)
		require.NoError(t, err)
		wave = append(wave, v)
	}
	assert.Equal(t, []int{4, 9, 14, 19, 4, 9, 14, 19}, wave)
	assert.Equal(t, int64(40), entries[7].Ticks)
}

func TestSimulateErrors(t *testing.T) {
	dir := t.TempDir()
	badRate := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badRate, []byte("consumer:\n  rate: 0\n"), 0o600))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero steps", []string{"--steps", "0"}, "--steps must be positive"},
		{"missing config", []string{"--config", filepath.Join(dir, "missing.yaml")}, "cannot load config"},
		{"bad rate", []string{"--config", badRate}, "consumer.rate"},
		{"bad journal", []string{"--journal", "/nonexistent/dir/journal.db"}, "cannot open journal"},
		{"bad alert", []string{"--alert", "value >"}, "invalid alert condition"},
		{"bad exporter", []string{"--trace", "zipkin"}, "cannot set up tracing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runSimulateCmd(t, "text", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestSimulateVerboseLogsToStderr(t *testing.T) {
	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"simulate", "--verbose", "--steps", "5"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, errOut.String(), "run starting")
	assert.NotContains(t, out.String(), "run starting")
}

func TestSimulateEnvOverridesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("consumer:\n  rate: 5\n  threshold: 2\n"), 0o600))
	t.Setenv("TICKFLOW_CONSUMER_RATE", "1")
	t.Setenv("TICKFLOW_PRODUCER_PERIOD", "4")

	out, _, err := runSimulateCmd(t, "json", "--config", path, "--steps", "8")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	var steps []int64
	for _, line := range lines[:len(lines)-1] {
		var ev simEvent
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		steps = append(steps, ev.Step)
	}
	assert.Equal(t, []int64{3, 5, 7}, steps)
}

func TestSimulateNullEnvUsesDefaults(t *testing.T) {
	t.Setenv("TICKFLOW_CONSUMER_RATE", "null")
	t.Setenv("TICKFLOW_CONSUMER_THRESHOLD", "~")

	out, _, err := runSimulateCmd(t, "text", "--run-id", "demo", "--steps", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "step 15")
	assert.Contains(t, out, "run demo: 20 steps, 1 events, 0 samples recorded")

	// null env values defer to the config file
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("consumer:\n  rate: 1\n  threshold: 1\n"), 0o600))
	out, _, err = runSimulateCmd(t, "json", "--config", path, "--steps", "3")
	require.NoError(t, err)

	var first simEvent
	require.NoError(t, json.Unmarshal([]byte(strings.SplitN(out, "\n", 2)[0]), &first))
	assert.Equal(t, simEvent{Step: 2, Elapsed: "20ms", Kind: "level", Value: "high"}, first)
}

func TestSimulateStdoutTrace(t *testing.T) {
	_, errOut, err := runSimulateCmd(t, "text", "--steps", "2", "--trace", "stdout")
	require.NoError(t, err)
	assert.Contains(t, errOut, "tickflow.cycle")
	assert.Contains(t, errOut, "tickflow.phase.switch")
}
