// Package plan loads a YAML file describing the series to aggregate, one entry per plotted line.
package plan

import (
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/tracetool/tracetool/internal/common/timeutil"
	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
	"github.com/tracetool/tracetool/internal/tracetool/aggregation"
	"github.com/tracetool/tracetool/internal/tracetool/filter"
)

type Kind string

const (
	// TimeKind series hold durations in nanoseconds, reported in the series unit.
	TimeKind Kind = "time"
	// CountKind series hold counters, reported as is.
	CountKind Kind = "count"
)

type File struct {
	Series []SeriesConfig `yaml:"series"`
}

type SeriesConfig struct {
	Name        string            `yaml:"name"`
	Kind        Kind              `yaml:"kind"`
	Table       string            `yaml:"table"`
	Column      string            `yaml:"column"`
	Unit        string            `yaml:"unit"`
	Filter      FilterConfig      `yaml:"filter"`
	Aggregation AggregationConfig `yaml:"aggregation"`
}

type FilterConfig struct {
	Start     string `yaml:"start"`
	End       string `yaml:"end"`
	Where     string `yaml:"where"`
	WorkHours bool   `yaml:"workhours"`
}

type AggregationConfig struct {
	Mode     string `yaml:"mode"`
	Size     string `yaml:"size"`
	MinCount int    `yaml:"mincount"`
}

// Series is a validated series description.
type Series struct {
	Name      string
	Kind      Kind
	Table     string
	Column    string
	Unit      time.Duration
	Filter    filter.Filter
	Modes     []aggregation.Mode
	Bucketing aggregation.Bucketing
}

// Defaults fill in what a series leaves out.
type Defaults struct {
	Filter    filter.Params
	WorkHours timeutil.WorkHours
	Modes     []aggregation.Mode
	Bucketing aggregation.Bucketing
}

func Load(path string, defaults Defaults) ([]Series, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, &tracetoolerrors.ErrInput{Name: "plan", Value: path, Message: err.Error()}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &tracetoolerrors.ErrInput{Name: "plan", Value: path, Message: err.Error()}
	}
	return Parse(content, defaults)
}

func Parse(content []byte, defaults Defaults) ([]Series, error) {
	var file File
	if err := yaml.UnmarshalStrict(content, &file); err != nil {
		return nil, errors.WithStack(&tracetoolerrors.ErrInput{Name: "plan", Value: "<yaml>", Message: err.Error()})
	}
	if len(file.Series) == 0 {
		return nil, &tracetoolerrors.ErrInput{Name: "plan.series", Value: "", Message: "no series defined"}
	}
	result := make([]Series, len(file.Series))
	names := make(map[string]bool)
	for i, config := range file.Series {
		series, err := config.resolve(defaults)
		if err != nil {
			return nil, errors.WithMessagef(err, "series %d", i)
		}
		if names[series.Name] {
			return nil, &tracetoolerrors.ErrInput{Name: "plan.series.name", Value: series.Name, Message: "duplicate series name"}
		}
		names[series.Name] = true
		result[i] = series
	}
	return result, nil
}

func (c SeriesConfig) resolve(defaults Defaults) (Series, error) {
	series := Series{
		Name:      c.Name,
		Kind:      c.Kind,
		Table:     c.Table,
		Column:    c.Column,
		Unit:      time.Nanosecond,
		Modes:     defaults.Modes,
		Bucketing: defaults.Bucketing,
	}
	if series.Name == "" {
		series.Name = c.Table + "." + c.Column
	}
	if series.Kind == "" {
		series.Kind = TimeKind
	}
	if series.Kind != TimeKind && series.Kind != CountKind {
		return Series{}, &tracetoolerrors.ErrInput{Name: "plan.series.kind", Value: c.Kind, Message: "must be time or count"}
	}
	if c.Table == "" || c.Column == "" {
		return Series{}, &tracetoolerrors.ErrInput{Name: "plan.series", Value: series.Name, Message: "table and column are required"}
	}
	if c.Unit != "" {
		if series.Kind == CountKind {
			return Series{}, &tracetoolerrors.ErrInput{Name: "plan.series.unit", Value: c.Unit, Message: "count series have no unit"}
		}
		unit, ok := timeutil.UnitOf(c.Unit)
		if !ok {
			return Series{}, &tracetoolerrors.ErrInput{Name: "plan.series.unit", Value: c.Unit, Message: "unknown unit"}
		}
		series.Unit = unit
	}

	filterParams := defaults.Filter
	if c.Filter.Start != "" {
		filterParams.Start = c.Filter.Start
	}
	if c.Filter.End != "" {
		filterParams.End = c.Filter.End
	}
	if c.Filter.Where != "" {
		filterParams.Where = c.Filter.Where
	}
	filterParams.WorkHours = filterParams.WorkHours || c.Filter.WorkHours
	f, err := filter.New(filterParams, defaults.WorkHours)
	if err != nil {
		return Series{}, err
	}
	series.Filter = f

	if c.Aggregation.Mode != "" {
		modes, err := aggregation.ParseModes(c.Aggregation.Mode)
		if err != nil {
			return Series{}, err
		}
		series.Modes = modes
	}
	if c.Aggregation.Size != "" {
		size, err := timeutil.ParseDuration(c.Aggregation.Size)
		if err != nil {
			return Series{}, err
		}
		series.Bucketing.Size = size
	}
	if c.Aggregation.MinCount != 0 {
		series.Bucketing.MinCount = c.Aggregation.MinCount
	}
	if err := series.Bucketing.Validate(); err != nil {
		return Series{}, err
	}
	return series, nil
}
