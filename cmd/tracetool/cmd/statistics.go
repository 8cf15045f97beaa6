package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
	"github.com/tracetool/tracetool/internal/tracetool"
	"github.com/tracetool/tracetool/internal/tracetool/statistics"
)

// Presets order rows by Q3 unless --sort-by or the configuration says otherwise.
var orderByQ3 = map[string]string{defaultAnnotationPrefix + "statistics.sortBy": string(statistics.SortByQ3)}

func addStatisticsFlags(cmd *cobra.Command) {
	bindFlag(cmd.Flags(), "sort-by", "statistics.sortBy", "", "Order rows by group or by q3")
	bindFlag(cmd.Flags(), "unit", "statistics.unit", "", "Unit values are reported in, e.g. s or ms")
}

func statisticsCmd(app *tracetool.App) *cobra.Command {
	query := tracetool.StatisticsQuery{}
	cmd := &cobra.Command{
		Use:   "statistics",
		Short: "Report the distribution of a column per group",
		Args:  cobra.NoArgs,
		RunE: withInterrupt(func(ctx *tracetoolcontext.Context, _ []string) error {
			return app.Statistics(ctx, query)
		}),
	}
	cmd.Flags().StringVar(&query.Table, "table", "", "Table to read")
	cmd.Flags().StringVar(&query.GroupColumn, "group-column", "", "Column to group by")
	cmd.Flags().StringVar(&query.ValueColumn, "value-column", "", "Column to summarise")
	for _, name := range []string{"table", "group-column", "value-column"} {
		_ = cmd.MarkFlagRequired(name)
	}
	addStatisticsFlags(cmd)
	return cmd
}

func viewStatisticsCmd(app *tracetool.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view-statistics",
		Short:       "Report the distribution of view execution times, ordered by Q3",
		Args:        cobra.NoArgs,
		Annotations: orderByQ3,
		RunE: withInterrupt(func(ctx *tracetoolcontext.Context, _ []string) error {
			return app.ViewStatistics(ctx)
		}),
	}
	addStatisticsFlags(cmd)
	return cmd
}

func formStatisticsCmd(app *tracetool.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "form-statistics",
		Short:       "Report the distribution of form startup times, ordered by Q3",
		Args:        cobra.NoArgs,
		Annotations: orderByQ3,
		RunE: withInterrupt(func(ctx *tracetoolcontext.Context, _ []string) error {
			return app.FormStatistics(ctx)
		}),
	}
	addStatisticsFlags(cmd)
	return cmd
}
