package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_AllTestdata(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)
			assert.NotEmpty(t, s.Name)
			assert.NotEmpty(t, s.Steps)
		})
	}
}

func TestLoadScenario_ResolvesCatalogPath(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/custom_catalog.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "catalogs", "tiny.cue"), s.Catalog)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_RejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: misspelled key
step:
  - op: fetch
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nsteps: [{op: fetch}]",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nsteps: [{op: fetch}]",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			yaml:    "name: n\ndescription: d\nsteps: []",
			wantErr: "steps list is required",
		},
		{
			name:    "missing op",
			yaml:    "name: n\ndescription: d\nsteps: [{source: x}]",
			wantErr: "steps[0]: op is required",
		},
		{
			name:    "unknown op",
			yaml:    "name: n\ndescription: d\nsteps: [{op: undo}]",
			wantErr: `steps[0]: unknown op "undo"`,
		},
		{
			name:    "activate without target",
			yaml:    "name: n\ndescription: d\nsteps: [{op: activate}]",
			wantErr: "target is required for activate",
		},
		{
			name:    "advance without duration",
			yaml:    "name: n\ndescription: d\nsteps: [{op: advance}]",
			wantErr: "duration is required for advance",
		},
		{
			name:    "check without expect",
			yaml:    "name: n\ndescription: d\nsteps: [{op: check}]",
			wantErr: "expect is required for check",
		},
		{
			name:    "assertion without type",
			yaml:    "name: n\ndescription: d\nsteps: [{op: fetch}]\nassertions: [{op: fetch}]",
			wantErr: "assertions[0]: type is required",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nsteps: [{op: fetch}]\nassertions: [{type: vibes}]",
			wantErr: `unknown assertion type "vibes"`,
		},
		{
			name:    "journal_order without ops",
			yaml:    "name: n\ndescription: d\nsteps: [{op: fetch}]\nassertions: [{type: journal_order}]",
			wantErr: "ops list is required",
		},
		{
			name:    "journal_count negative",
			yaml:    "name: n\ndescription: d\nsteps: [{op: fetch}]\nassertions: [{type: journal_count, op: fetch, count: -1}]",
			wantErr: "count must be non-negative",
		},
		{
			name:    "final_state without record",
			yaml:    "name: n\ndescription: d\nsteps: [{op: fetch}]\nassertions: [{type: final_state, expect: {body: x}}]",
			wantErr: "record is required for final_state",
		},
		{
			name:    "final_state without expect",
			yaml:    "name: n\ndescription: d\nsteps: [{op: fetch}]\nassertions: [{type: final_state, record: 0}]",
			wantErr: "expect is required for final_state",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte("name: n\ndescription: d\nsteps:\n  - op: fetch\n"))
	require.NoError(t, err)
	assert.Equal(t, OpFetch, s.Steps[0].Op)
	assert.Empty(t, s.Steps[0].Source)
	assert.Nil(t, s.Steps[0].Record)
	assert.Nil(t, s.Steps[0].Expect)
}

func TestLoadScenario_AbsoluteCatalogKept(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "c.cue")
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: n\ndescription: d\ncatalog: "+catalog+"\nsteps: [{op: fetch}]\n"), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, catalog, s.Catalog)
}
