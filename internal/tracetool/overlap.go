package tracetool

import (
	"github.com/tracetool/tracetool/internal/common/timeutil"
	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
	"github.com/tracetool/tracetool/internal/tracetool/correlation"
	"github.com/tracetool/tracetool/internal/tracetool/eventsource"
	"github.com/tracetool/tracetool/internal/tracetool/overlap"
	"github.com/tracetool/tracetool/internal/tracetool/report"
)

// ComputeOverlap computes the overlap of every tracked event and the number of active events over time, and
// replaces the overlap and active count tables with the result.
func (a *App) ComputeOverlap(ctx *tracetoolcontext.Context) error {
	const command = "compute-overlap"
	return a.run(ctx, command, func(ctx *tracetoolcontext.Context) error {
		f, err := a.Params.EventFilter()
		if err != nil {
			return err
		}
		return a.withRepository(func(repo *eventsource.Repository) error {
			if err := repo.ValidatePredicate(ctx, a.Params.Schema.EventsTable, f.Where); err != nil {
				return err
			}
			intervals, err := repo.ReadIntervals(ctx, f)
			if err != nil {
				return err
			}
			a.Metrics.RecordRead(a.Params.Schema.EventsTable, len(intervals))
			ctx.Log.Infof("Read %d events", len(intervals))

			var result overlap.Result
			if a.Params.Overlap.PartitionByGroup {
				result, err = overlap.ComputeByGroup(ctx, intervals, a.Params.Parallelism)
				if err != nil {
					return err
				}
			} else {
				result = overlap.Compute(intervals)
			}
			a.reportDiagnostics(ctx, command, result.Diagnostics)

			if err := repo.ReplaceOverlapTables(ctx, result.Records, result.Timeline); err != nil {
				return err
			}
			a.Metrics.RecordWritten(a.Params.Schema.OverlapTable, len(result.Records))
			a.Metrics.RecordWritten(a.Params.Schema.ActiveCountTable, len(result.Timeline))
			return nil
		})
	})
}

// ComputeOverlapPCA reports, per group, how strongly execution time follows overlap. It reads the overlap
// table written by ComputeOverlap.
func (a *App) ComputeOverlapPCA(ctx *tracetoolcontext.Context) error {
	const command = "compute-overlap-pca"
	return a.run(ctx, command, func(ctx *tracetoolcontext.Context) error {
		f, err := a.Params.EventFilter()
		if err != nil {
			return err
		}
		return a.withRepository(func(repo *eventsource.Repository) error {
			groups, err := repo.ReadOverlapPairs(ctx, f)
			if err != nil {
				return err
			}
			n := 0
			for _, pairs := range groups {
				n += len(pairs)
			}
			a.Metrics.RecordRead(a.Params.Schema.OverlapTable, n)
			ctx.Log.Infof("Read %d events in %d groups", n, len(groups))

			results, diagnostics, err := correlation.Compute(ctx, groups, a.Params.Correlation, a.Params.Parallelism)
			if err != nil {
				return err
			}
			a.reportDiagnostics(ctx, command, diagnostics)
			return a.write(report.CorrelationRows(
				a.Params.Schema.GroupColumn,
				timeutil.UnitName(a.Params.Correlation.Q3Unit),
				results,
			))
		})
	})
}
