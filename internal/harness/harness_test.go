package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadAndRun(t *testing.T, path string) *Result {
	t.Helper()
	s, err := LoadScenario(path)
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)
	return result
}

func TestRun_TestdataScenariosPass(t *testing.T) {
	for _, name := range []string{"end_to_end", "generation_guard", "fallback_and_errors", "custom_catalog"} {
		t.Run(name, func(t *testing.T) {
			result := loadAndRun(t, "testdata/scenarios/"+name+".yaml")
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
			assert.NotEmpty(t, result.Trace)
		})
	}
}

func TestRun_Golden(t *testing.T) {
	for _, name := range []string{"end_to_end", "generation_guard"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/end_to_end.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := MarshalTrace(s.Name, first)
	require.NoError(t, err)
	b, err := MarshalTrace(s.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_DefaultSessionID(t *testing.T) {
	s, err := ParseScenario([]byte("name: n\ndescription: d\nsteps: [{op: fetch}]"))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, "test-session", result.SessionID)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, "applied", result.Trace[0].Outcome)
	assert.Nil(t, result.Trace[0].Record)
}

func TestRun_FailedExpectationsRecorded(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: failing
description: every expectation here is wrong
steps:
  - op: fetch
    expect:
      records: 99
      applied: false
  - op: edit_body
    record: 0
    text: x
    expect:
      body: y
      error: NOT_FOUND
  - op: edit_body
    record: 42
    text: x
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)

	joined := strings.Join(result.Errors, "\n")
	assert.Contains(t, joined, "steps[0] fetch: applied")
	assert.Contains(t, joined, "steps[0] fetch: records: expected 99, got 3")
	assert.Contains(t, joined, `steps[1] edit_body: error: expected NOT_FOUND, got none`)
	assert.Contains(t, joined, `steps[1] edit_body: record 0 body: expected "y", got "x"`)
	assert.Contains(t, joined, "steps[2] edit_body: unexpected error: NOT_FOUND")
}

func TestRun_HeldFetchCancelledAtEnd(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: dangling
description: a held fetch that is never released
steps:
  - op: start_fetch
    source: https://example.com/tech
    expect:
      loading: true
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 1)
	assert.Equal(t, "fetch", result.Trace[0].Op)
	assert.Equal(t, "cancelled", result.Trace[0].Outcome)
	assert.False(t, result.Final.Loading)
}

func TestRun_ReleaseWithoutHeldFetch(t *testing.T) {
	s, err := ParseScenario([]byte("name: n\ndescription: d\nsteps: [{op: release, source: a}]"))
	require.NoError(t, err)

	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no held fetch for "a"`)
}

func TestRun_BadDuration(t *testing.T) {
	s, err := ParseScenario([]byte("name: n\ndescription: d\nsteps: [{op: advance, duration: soon}]"))
	require.NoError(t, err)

	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestRun_BadCatalog(t *testing.T) {
	s, err := ParseScenario([]byte("name: n\ndescription: d\ncatalog: /does/not/exist.cue\nsteps: [{op: fetch}]"))
	require.NoError(t, err)

	_, err = Run(s)
	require.Error(t, err)
}
