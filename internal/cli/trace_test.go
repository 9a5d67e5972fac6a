package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1njure/mpit25-NetJaggers/internal/harness"
)

func runTraceCommand(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTrace_Text(t *testing.T) {
	out, err := runTraceCommand(t, &RootOptions{Format: "text"}, harnessScenarios+"/generation_guard.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "Trace for scenario: generation_guard")
	assert.Contains(t, out, "Session: guard-session")
	assert.Contains(t, out, "Status: PASS")
	assert.Contains(t, out, "superseded gen=1")
	assert.Contains(t, out, "applied gen=2")
	assert.Contains(t, out, "Total Events: 2")
	assert.NotContains(t, out, "resolved=")
}

func TestTrace_VerboseShowsDetail(t *testing.T) {
	out, err := runTraceCommand(t, &RootOptions{Format: "text", Verbose: true}, harnessScenarios+"/generation_guard.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "{fallback=false, records=3, resolved=https://example.com/sports, source=https://example.com/sports}")
}

func TestTrace_JSONWithOpFilter(t *testing.T) {
	out, err := runTraceCommand(t, &RootOptions{Format: "json"}, harnessScenarios+"/end_to_end.yaml", "--op", "reset")
	require.NoError(t, err)

	var result TraceResult
	decodeData(t, out, &result)
	assert.Equal(t, "end_to_end", result.Scenario)
	assert.True(t, result.Pass)
	require.Len(t, result.Trace, 2)
	for _, ev := range result.Trace {
		assert.Equal(t, "reset", ev.Op)
	}
	assert.Equal(t, map[string]int{"ok": 2}, result.Stats.Outcomes)
}

func TestTrace_FailingScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrong.yaml")
	require.NoError(t, os.WriteFile(path, []byte(failingScenario), 0644))

	out, err := runTraceCommand(t, &RootOptions{Format: "text"}, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Status: FAIL")
	assert.Contains(t, out, "=== Failures ===")
}

func TestTrace_MissingFile(t *testing.T) {
	_, err := runTraceCommand(t, &RootOptions{Format: "text"}, "/does/not/exist.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTrace_RequiresArg(t *testing.T) {
	_, err := runTraceCommand(t, &RootOptions{Format: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestFormatDetail_Sorted(t *testing.T) {
	assert.Equal(t, "{a=1, b=2, c=3}", formatDetail(map[string]string{"c": "3", "a": "1", "b": "2"}))
}

func TestFilterTrace(t *testing.T) {
	trace := []harness.TraceEvent{{Seq: 1, Op: "fetch"}, {Seq: 2, Op: "copy"}, {Seq: 3, Op: "fetch"}}
	assert.Len(t, filterTrace(trace, ""), 3)

	got := filterTrace(trace, "fetch")
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[1].Seq)
	assert.Empty(t, filterTrace(trace, "publish"))
}
