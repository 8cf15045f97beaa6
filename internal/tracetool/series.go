package tracetool

import (
	"time"

	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
	"github.com/tracetool/tracetool/internal/tracetool/aggregation"
	"github.com/tracetool/tracetool/internal/tracetool/eventsource"
	"github.com/tracetool/tracetool/internal/tracetool/plan"
	"github.com/tracetool/tracetool/internal/tracetool/report"
)

// AggregateQuery selects a single series to aggregate with the configured filter and aggregation.
type AggregateQuery struct {
	Table  string
	Column string
	// Values are divided by Unit; leave zero for counters.
	Unit time.Duration
}

// Aggregate resamples one column into buckets and reports a row per bucket and mode.
func (a *App) Aggregate(ctx *tracetoolcontext.Context, query AggregateQuery) error {
	const command = "aggregate"
	return a.run(ctx, command, func(ctx *tracetoolcontext.Context) error {
		if query.Table == "" || query.Column == "" {
			return &tracetoolerrors.ErrInput{Name: "table", Value: query.Table + "." + query.Column, Message: "table and column are required"}
		}
		f, err := a.Params.EventFilter()
		if err != nil {
			return err
		}
		modes, err := a.Params.Modes()
		if err != nil {
			return err
		}
		bucketing, err := a.Params.Bucketing()
		if err != nil {
			return err
		}
		series := plan.Series{
			Name:      query.Table + "." + query.Column,
			Kind:      plan.TimeKind,
			Table:     query.Table,
			Column:    query.Column,
			Unit:      query.Unit,
			Filter:    f,
			Modes:     modes,
			Bucketing: bucketing,
		}
		return a.withRepository(func(repo *eventsource.Repository) error {
			if err := repo.ValidatePredicate(ctx, series.Table, f.Where); err != nil {
				return err
			}
			points, err := a.aggregateSeries(ctx, repo, series)
			if err != nil {
				return err
			}
			return a.write(report.SeriesRows(points))
		})
	})
}

// Series aggregates every series of the plan at path, concurrently, and reports them in plan order.
func (a *App) Series(ctx *tracetoolcontext.Context, path string) error {
	const command = "series"
	return a.run(ctx, command, func(ctx *tracetoolcontext.Context) error {
		modes, err := a.Params.Modes()
		if err != nil {
			return err
		}
		bucketing, err := a.Params.Bucketing()
		if err != nil {
			return err
		}
		allSeries, err := plan.Load(path, plan.Defaults{
			Filter:    a.Params.Filter,
			WorkHours: a.Params.WorkHours,
			Modes:     modes,
			Bucketing: bucketing,
		})
		if err != nil {
			return err
		}
		ctx.Log.Infof("Aggregating %d series", len(allSeries))

		return a.withRepository(func(repo *eventsource.Repository) error {
			for _, series := range allSeries {
				if err := repo.ValidatePredicate(ctx, series.Table, series.Filter.Where); err != nil {
					return err
				}
			}
			results := make([][]report.SeriesPoint, len(allSeries))
			g, gctx := tracetoolcontext.ErrGroup(ctx, a.Params.Parallelism)
			for i, series := range allSeries {
				i, series := i, series
				g.Go(func() error {
					points, err := a.aggregateSeries(tracetoolcontext.WithLogField(gctx, "series", series.Name), repo, series)
					results[i] = points
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			var points []report.SeriesPoint
			for _, result := range results {
				points = append(points, result...)
			}
			return a.write(report.SeriesRows(points))
		})
	})
}

// aggregateSeries reads, aggregates, converts and segments one series.
func (a *App) aggregateSeries(ctx *tracetoolcontext.Context, repo *eventsource.Repository, series plan.Series) ([]report.SeriesPoint, error) {
	samples, err := repo.ReadSeries(ctx, series.Table, series.Column, series.Filter)
	if err != nil {
		return nil, err
	}
	a.Metrics.RecordRead(series.Table, len(samples))
	ctx.Log.Debugf("Read %d samples of %s", len(samples), series.Name)

	aggregated, err := aggregation.AggregateModes(samples, series.Modes, series.Bucketing)
	if err != nil {
		return nil, err
	}
	var points []report.SeriesPoint
	for _, modeSeries := range aggregated {
		converted := modeSeries.Points
		if series.Kind == plan.TimeKind {
			converted = aggregation.Convert(converted, modeSeries.Mode, series.Unit)
		}
		for segment, segmentPoints := range aggregation.Segment(converted, series.Bucketing.Size) {
			for _, point := range segmentPoints {
				points = append(points, report.SeriesPoint{
					Series:  series.Name,
					Segment: segment,
					Mode:    modeSeries.Mode,
					Point:   point,
				})
			}
		}
	}
	return points, nil
}
