package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := filepath.Join(dir, "test.yaml")

	content := `
name: test_scenario
description: "Test scenario for validation"
seed: 9
low_memory: true
steps:
  - add: gba_event
    record:
      carrier_id: 4
      successful: true
  - advance: 90m
  - pull: gba_event
    expect:
      result: success
      events: 1
assertions:
  - type: stored_count
    kind: gba_event
    count: 0
`
	require.NoError(t, os.WriteFile(scenarioPath, []byte(content), 0644))

	scenario, err := LoadScenario(scenarioPath)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, uint64(9), scenario.Seed)
	assert.True(t, scenario.LowMemory)
	require.Len(t, scenario.Steps, 3)
	assert.Equal(t, "gba_event", scenario.Steps[0].Add)
	assert.Equal(t, 90*time.Minute, scenario.Steps[1].Advance)
	assert.Equal(t, "gba_event", scenario.Steps[2].Pull)
	require.NotNil(t, scenario.Steps[2].Expect)
	assert.Equal(t, "success", scenario.Steps[2].Expect.Result)
	require.NotNil(t, scenario.Steps[2].Expect.Events)
	assert.Equal(t, 1, *scenario.Steps[2].Expect.Events)
	assert.Len(t, scenario.Assertions, 1)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_TestdataFiles(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			require.NoError(t, err)
		})
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			content: "name: x\ndescription: y\nstep:\n  - advance: 1h\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "description: y\nsteps:\n  - advance: 1h\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: x\nsteps:\n  - advance: 1h\n",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			content: "name: x\ndescription: y\n",
			wantErr: "steps list is required",
		},
		{
			name:    "two actions in one step",
			content: "name: x\ndescription: y\nsteps:\n  - advance: 1h\n    flush: true\n",
			wantErr: "exactly one action is required, got 2",
		},
		{
			name:    "empty step",
			content: "name: x\ndescription: y\nsteps:\n  - {}\n",
			wantErr: "exactly one action is required, got 0",
		},
		{
			name:    "unknown add kind",
			content: "name: x\ndescription: y\nsteps:\n  - add: fax\n    record: {}\n",
			wantErr: "unknown atom kind",
		},
		{
			name:    "live kind cannot be added",
			content: "name: x\ndescription: y\nsteps:\n  - add: carrier_id_table_version\n    record: {}\n",
			wantErr: "cannot be added",
		},
		{
			name:    "add without record",
			content: "name: x\ndescription: y\nsteps:\n  - add: gba_event\n",
			wantErr: "record is required",
		},
		{
			name:    "negative advance",
			content: "name: x\ndescription: y\nsteps:\n  - advance: -1h\n",
			wantErr: "advance must be positive",
		},
		{
			name:    "unknown pull kind",
			content: "name: x\ndescription: y\nsteps:\n  - pull: fax\n",
			wantErr: "unknown atom kind",
		},
		{
			name:    "expect without pull",
			content: "name: x\ndescription: y\nsteps:\n  - flush: true\n    expect: { result: skip }\n",
			wantErr: "expect is only valid on pull steps",
		},
		{
			name:    "record without add",
			content: "name: x\ndescription: y\nsteps:\n  - flush: true\n    record: { count: 1 }\n",
			wantErr: "record is only valid on add steps",
		},
		{
			name:    "unknown assertion type",
			content: "name: x\ndescription: y\nsteps:\n  - flush: true\nassertions:\n  - type: trace_order\n    kind: gba_event\n",
			wantErr: "unknown assertion type",
		},
		{
			name:    "assertion kind",
			content: "name: x\ndescription: y\nsteps:\n  - flush: true\nassertions:\n  - type: stored_count\n    kind: fax\n",
			wantErr: "unknown atom kind",
		},
		{
			name:    "event_contains without fields",
			content: "name: x\ndescription: y\nsteps:\n  - flush: true\nassertions:\n  - type: event_contains\n    kind: gba_event\n",
			wantErr: "fields are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
