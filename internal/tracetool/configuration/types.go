package configuration

import (
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/tracetool/tracetool/internal/common/database"
	"github.com/tracetool/tracetool/internal/common/timeutil"
	"github.com/tracetool/tracetool/internal/tracetool/aggregation"
	"github.com/tracetool/tracetool/internal/tracetool/correlation"
	"github.com/tracetool/tracetool/internal/tracetool/eventsource"
	"github.com/tracetool/tracetool/internal/tracetool/filter"
	"github.com/tracetool/tracetool/internal/tracetool/report"
	"github.com/tracetool/tracetool/internal/tracetool/statistics"
)

// TracetoolConfig holds every parameter of every command, so that any of them can be given either as a
// flag or in a config file that's reused between runs.
type TracetoolConfig struct {
	Database database.Config
	Schema   eventsource.Schema
	Filter   filter.Params
	// Window used when Filter.WorkHours is set.
	WorkHours   timeutil.WorkHours
	Aggregation AggregationConfig
	Overlap     OverlapConfig
	Correlation correlation.Params
	Statistics  statistics.Params
	// Maximum number of groups or series processed concurrently.
	Parallelism int `validate:"gte=1"`
	Output      OutputConfig
	// If set, run metrics are written here in the prometheus text format at the end of each command.
	MetricsFile string
}

type AggregationConfig struct {
	// Aggregation modes, e.g. ["mean"] or ["median", "quartiles"].
	Mode []string `validate:"min=1"`
	// Bucket size.
	Size time.Duration `validate:"gt=0"`
	// Buckets with fewer values are dropped.
	MinCount int `validate:"gte=0"`
}

type OverlapConfig struct {
	// Only credit overlap between events of the same group.
	PartitionByGroup bool
}

type OutputConfig struct {
	Format report.Format `validate:"oneof=csv tsv table"`
}

// SetDefaults registers the default of every parameter with v.
func SetDefaults(v *viper.Viper) {
	schema := eventsource.DefaultSchema()
	v.SetDefault("database.type", database.Sqlite)
	v.SetDefault("database.path", "tracetool.db")

	v.SetDefault("schema.eventsTable", schema.EventsTable)
	v.SetDefault("schema.groupColumn", schema.GroupColumn)
	v.SetDefault("schema.timestampColumn", schema.TimestampColumn)
	v.SetDefault("schema.ordinalColumn", schema.OrdinalColumn)
	v.SetDefault("schema.durationColumn", schema.DurationColumn)
	v.SetDefault("schema.overlapTable", schema.OverlapTable)
	v.SetDefault("schema.activeCountTable", schema.ActiveCountTable)
	v.SetDefault("schema.insertBatchSize", schema.InsertBatchSize)

	v.SetDefault("filter.workHours", false)

	workHours := timeutil.DefaultWorkHours()
	v.SetDefault("workHours.startHour", workHours.StartHour)
	v.SetDefault("workHours.endHour", workHours.EndHour)
	v.SetDefault("workHours.timeZone", workHours.TimeZone)
	v.SetDefault("workHours.weekdays", workHours.Weekdays)

	v.SetDefault("aggregation.mode", []string{string(aggregation.Mean)})
	v.SetDefault("aggregation.size", time.Hour)
	v.SetDefault("aggregation.minCount", 0)

	v.SetDefault("overlap.partitionByGroup", false)

	correlationParams := correlation.DefaultParams()
	v.SetDefault("correlation.minSamples", correlationParams.MinSamples)
	v.SetDefault("correlation.overlapMetric", string(correlationParams.OverlapMetric))
	v.SetDefault("correlation.q3Unit", correlationParams.Q3Unit)

	v.SetDefault("statistics.sortBy", string(statistics.SortByGroup))
	v.SetDefault("statistics.unit", time.Second)

	v.SetDefault("parallelism", runtime.NumCPU())
	v.SetDefault("output.format", string(report.CSV))
}

// Default returns the configuration used when nothing is configured.
func Default() TracetoolConfig {
	return TracetoolConfig{
		Database:  database.Config{Type: database.Sqlite, Path: "tracetool.db"},
		Schema:    eventsource.DefaultSchema(),
		WorkHours: timeutil.DefaultWorkHours(),
		Aggregation: AggregationConfig{
			Mode: []string{string(aggregation.Mean)},
			Size: time.Hour,
		},
		Correlation: correlation.DefaultParams(),
		Statistics:  statistics.Params{SortBy: statistics.SortByGroup, Unit: time.Second},
		Parallelism: runtime.NumCPU(),
		Output:      OutputConfig{Format: report.CSV},
	}
}

// EventFilter resolves the configured filter.
func (c TracetoolConfig) EventFilter() (filter.Filter, error) {
	return filter.New(c.Filter, c.WorkHours)
}

func (c TracetoolConfig) Modes() ([]aggregation.Mode, error) {
	return aggregation.ParseModeList(c.Aggregation.Mode)
}

func (c TracetoolConfig) Bucketing() (aggregation.Bucketing, error) {
	bucketing := aggregation.Bucketing{Size: c.Aggregation.Size, MinCount: c.Aggregation.MinCount}
	return bucketing, bucketing.Validate()
}
