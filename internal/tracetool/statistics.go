package tracetool

import (
	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
	"github.com/tracetool/tracetool/internal/tracetool/eventsource"
	"github.com/tracetool/tracetool/internal/tracetool/report"
	"github.com/tracetool/tracetool/internal/tracetool/statistics"
)

// StatisticsQuery selects the values to summarise and how to group them.
type StatisticsQuery struct {
	Table       string
	GroupColumn string
	ValueColumn string
	// Header of the group column in the report; defaults to GroupColumn.
	GroupLabel string
}

var FormStatisticsQuery = StatisticsQuery{
	Table:       "form_widget_startup",
	GroupColumn: "form_id",
	ValueColumn: "wallclock_time_ns",
	GroupLabel:  "form ID",
}

// ViewStatisticsQuery summarises the execution time of the events table per group.
func ViewStatisticsQuery(schema eventsource.Schema) StatisticsQuery {
	return StatisticsQuery{
		Table:       schema.EventsTable,
		GroupColumn: schema.GroupColumn,
		ValueColumn: schema.DurationColumn,
		GroupLabel:  "view ID",
	}
}

// Statistics reports the distribution of the values of each group.
func (a *App) Statistics(ctx *tracetoolcontext.Context, query StatisticsQuery) error {
	return a.statistics(ctx, "statistics", query)
}

func (a *App) ViewStatistics(ctx *tracetoolcontext.Context) error {
	return a.statistics(ctx, "view-statistics", ViewStatisticsQuery(a.Params.Schema))
}

func (a *App) FormStatistics(ctx *tracetoolcontext.Context) error {
	return a.statistics(ctx, "form-statistics", FormStatisticsQuery)
}

func (a *App) statistics(ctx *tracetoolcontext.Context, command string, query StatisticsQuery) error {
	return a.run(ctx, command, func(ctx *tracetoolcontext.Context) error {
		f, err := a.Params.EventFilter()
		if err != nil {
			return err
		}
		label := query.GroupLabel
		if label == "" {
			label = query.GroupColumn
		}
		return a.withRepository(func(repo *eventsource.Repository) error {
			if err := repo.ValidatePredicate(ctx, query.Table, f.Where); err != nil {
				return err
			}
			groups, err := repo.ReadGroupedValues(ctx, query.Table, query.GroupColumn, query.ValueColumn, f)
			if err != nil {
				return err
			}
			n := 0
			for _, values := range groups {
				n += len(values)
			}
			a.Metrics.RecordRead(query.Table, n)
			ctx.Log.Infof("Calculating statistics of %d values in %d groups", n, len(groups))

			rows, diagnostics, err := statistics.Compute(ctx, groups, a.Params.Statistics, a.Params.Parallelism)
			if err != nil {
				return err
			}
			a.reportDiagnostics(ctx, command, diagnostics)
			return a.write(report.StatisticsRows(label, rows))
		})
	})
}
