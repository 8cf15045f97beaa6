package plan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracetool/tracetool/internal/common/timeutil"
	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
	"github.com/tracetool/tracetool/internal/tracetool/aggregation"
	"github.com/tracetool/tracetool/internal/tracetool/filter"
)

var defaults = Defaults{
	Filter:    filter.Params{Where: "view_id IS NOT NULL"},
	WorkHours: timeutil.DefaultWorkHours(),
	Modes:     []aggregation.Mode{aggregation.Mean},
	Bucketing: aggregation.Bucketing{Size: time.Hour},
}

func TestParse(t *testing.T) {
	series, err := Parse([]byte(`
series:
  - name: wallclock
    table: item_view_executor_execute
    column: wallclock_time_ns
    unit: ms
    filter:
      start: "2023-03"
      end: "2023-03-31"
    aggregation:
      mode: quartiles
      size: 1D
      mincount: 5
  - kind: count
    table: active_query_count
    column: count
`), defaults)
	require.NoError(t, err)
	require.Len(t, series, 2)

	first := series[0]
	assert.Equal(t, "wallclock", first.Name)
	assert.Equal(t, TimeKind, first.Kind)
	assert.Equal(t, time.Millisecond, first.Unit)
	assert.Equal(t, []aggregation.Mode{aggregation.Q1, aggregation.Q3}, first.Modes)
	assert.Equal(t, aggregation.Bucketing{Size: timeutil.Day, MinCount: 5}, first.Bucketing)
	require.NotNil(t, first.Filter.Start)
	assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC).UnixNano(), *first.Filter.Start)
	require.NotNil(t, first.Filter.End)
	assert.Equal(t, "view_id IS NOT NULL", first.Filter.Where)

	second := series[1]
	assert.Equal(t, "active_query_count.count", second.Name)
	assert.Equal(t, CountKind, second.Kind)
	assert.Equal(t, time.Nanosecond, second.Unit)
	assert.Equal(t, defaults.Modes, second.Modes)
	assert.Equal(t, defaults.Bucketing, second.Bucketing)
	assert.Nil(t, second.Filter.Start)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"not yaml":        "series: [",
		"unknown field":   "series:\n  - table: t\n    column: c\n    colour: red\n",
		"no series":       "series: []\n",
		"missing column":  "series:\n  - table: t\n",
		"unknown kind":    "series:\n  - kind: gauge\n    table: t\n    column: c\n",
		"unknown unit":    "series:\n  - table: t\n    column: c\n    unit: parsecs\n",
		"count with unit": "series:\n  - kind: count\n    table: t\n    column: c\n    unit: ms\n",
		"bad size":        "series:\n  - table: t\n    column: c\n    aggregation:\n      size: soon\n",
		"bad mode":        "series:\n  - table: t\n    column: c\n    aggregation:\n      mode: mode\n",
		"bad start":       "series:\n  - table: t\n    column: c\n    filter:\n      start: yesterday\n",
		"duplicate name":  "series:\n  - table: t\n    column: c\n  - table: t\n    column: c\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content), defaults)
			assert.True(t, tracetoolerrors.IsInput(err), "expected an input error, got %v", err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("series:\n  - table: t\n    column: c\n"), 0o644))
	series, err := Load(path, defaults)
	require.NoError(t, err)
	assert.Len(t, series, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), defaults)
	assert.True(t, tracetoolerrors.IsInput(err))
}
