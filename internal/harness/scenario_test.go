package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario(t *testing.T) {
	data := []byte(`
name: minimal
description: One plan, one execution
work_order:
  id: wo-1
  item_id: item-1
plans:
  - id: a
    name: Posters
    kind: print
    quantity: 10
  - id: b
    name: Labels
    ordinal: 7
    kind: cut
    quantity: 4
flow:
  - op: import
  - op: start
    record: a
    as: a1
  - op: set_qty
    record: a1
    qty: 5
    expect:
      valid: true
assertions:
  - type: progress
    record: a
    executed: 5
`)

	s, err := ParseScenario(data)
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, "wo-1", s.WorkOrder.ID)
	require.Len(t, s.Plans, 2)
	assert.Equal(t, 1, s.Plans[0].Ordinal, "missing ordinal defaults to position")
	assert.Equal(t, 7, s.Plans[1].Ordinal)
	require.Len(t, s.Flow, 3)
	require.NotNil(t, s.Flow[2].Qty)
	assert.Equal(t, int64(5), *s.Flow[2].Qty)
	require.NotNil(t, s.Flow[2].Expect.Valid)
	assert.True(t, *s.Flow[2].Expect.Valid)
	require.Len(t, s.Assertions, 1)
	assert.Equal(t, AssertProgress, s.Assertions[0].Type)
}

func TestParseScenario_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: y\nflow:\n  - op: import\nassertion: []\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: "description: y\nflow:\n  - op: import\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\nflow:\n  - op: import\n",
			want: "description is required",
		},
		{
			name: "empty flow",
			yaml: "name: x\ndescription: y\n",
			want: "flow list is required",
		},
		{
			name: "unknown op",
			yaml: "name: x\ndescription: y\nflow:\n  - op: reprint\n",
			want: `unknown op "reprint"`,
		},
		{
			name: "step without record",
			yaml: "name: x\ndescription: y\nflow:\n  - op: split\n",
			want: "split needs a record alias",
		},
		{
			name: "set_qty without qty",
			yaml: "name: x\ndescription: y\nflow:\n  - op: set_qty\n    record: a\n",
			want: "set_qty needs qty",
		},
		{
			name: "update without fields",
			yaml: "name: x\ndescription: y\nflow:\n  - op: update\n    record: a\n",
			want: "update needs fields",
		},
		{
			name: "unknown assertion type",
			yaml: "name: x\ndescription: y\nflow:\n  - op: import\nassertions:\n  - type: trace\n    record: a\n",
			want: `unknown type "trace"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
