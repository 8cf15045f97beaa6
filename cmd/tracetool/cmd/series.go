package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tracetool/tracetool/internal/common/timeutil"
	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
	"github.com/tracetool/tracetool/internal/tracetool"
)

func addAggregationFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("mode", nil, "Aggregation modes: mean, median, min, max, count, sum, stddev, q1, q3, iqr or quartiles")
	annotate(cmd.Flags(), "mode", "aggregation.mode")
	bindFlag(cmd.Flags(), "size", "aggregation.size", "", "Bucket size, e.g. 1h or 1D")
	cmd.Flags().Int("min-count", 0, "Drop buckets with fewer values")
	annotate(cmd.Flags(), "min-count", "aggregation.minCount")
}

func aggregateCmd(app *tracetool.App) *cobra.Command {
	query := tracetool.AggregateQuery{}
	var unit string
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Resample a column into fixed size buckets",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if unit == "" {
				return nil
			}
			d, ok := timeutil.UnitOf(unit)
			if !ok {
				return &tracetoolerrors.ErrInput{Name: "unit", Value: unit, Message: "unknown unit"}
			}
			query.Unit = d
			return nil
		},
		RunE: withInterrupt(func(ctx *tracetoolcontext.Context, _ []string) error {
			return app.Aggregate(ctx, query)
		}),
	}
	cmd.Flags().StringVar(&query.Table, "table", "", "Table to read")
	cmd.Flags().StringVar(&query.Column, "column", "", "Column to aggregate")
	cmd.Flags().StringVar(&unit, "unit", "", "Report nanosecond durations in this unit, e.g. ms")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("column")
	addAggregationFlags(cmd)
	return cmd
}

func seriesCmd(app *tracetool.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series PLAN",
		Short: "Aggregate every series described in a YAML plan file",
		Long: `Aggregates, concurrently, each series of the plan file. Each series names a table and column and may
override the filter, the aggregation and the unit; anything it leaves out is taken from the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: withInterrupt(func(ctx *tracetoolcontext.Context, args []string) error {
			return app.Series(ctx, args[0])
		}),
	}
	addAggregationFlags(cmd)
	return cmd
}
