package overlap

import (
	"golang.org/x/exp/slices"

	commonslices "github.com/tracetool/tracetool/internal/common/slices"
	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
)

// ComputeByGroup credits overlap only between intervals of the same group. Groups are swept concurrently,
// together with the timeline over all intervals, using at most parallelism goroutines. The result
// doesn't depend on the order in which groups complete.
func ComputeByGroup(ctx *tracetoolcontext.Context, intervals []Interval, parallelism int) (Result, error) {
	accepted, diagnostics := Accepted(intervals)
	groups := commonslices.GroupBy(accepted, func(i Interval) int64 { return i.GroupId }, commonslices.Identity[Interval])
	groupIds := commonslices.SortedKeys(groups)

	records := make([][]Record, len(groupIds))
	g, gctx := tracetoolcontext.ErrGroup(ctx, parallelism)
	for i, groupId := range groupIds {
		i, groupId := i, groupId
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = Compute(groups[groupId]).Records
			return nil
		})
	}

	var timeline []ActiveCountPoint
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		timeline = sweep(arenaOf(accepted))
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	merged := commonslices.Flatten(records)
	slices.SortFunc(merged, func(a, b Record) bool { return a.Key().Less(b.Key()) })
	return Result{Records: merged, Timeline: timeline, Diagnostics: diagnostics}, nil
}
