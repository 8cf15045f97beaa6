// Package statistics computes descriptive statistics over all the values of each group.
package statistics

import (
	"math"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"

	commonslices "github.com/tracetool/tracetool/internal/common/slices"
	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
	"github.com/tracetool/tracetool/internal/tracetool/aggregation"
)

// Row summarises the values of one group. Stddev is NaN when Count < 2.
type Row struct {
	GroupId int64
	Count   int
	Min     float64
	Max     float64
	Mean    float64
	Median  float64
	Q1      float64
	Q3      float64
	IQR     float64
	Stddev  float64
}

func (r Row) HasStddev() bool {
	return !math.IsNaN(r.Stddev)
}

type SortBy string

const (
	SortByGroup SortBy = "group"
	SortByQ3    SortBy = "q3"
)

type Params struct {
	SortBy SortBy `validate:"omitempty,oneof=group q3"`
	// Values are divided by Unit before they are summarised, e.g. time.Second to report nanoseconds in seconds.
	Unit time.Duration
}

// Summarize computes the Row of one group. values is sorted in place.
func Summarize(groupId int64, values []float64) (Row, error) {
	if len(values) == 0 {
		return Row{}, errors.WithStack(&tracetoolerrors.ErrCompute{GroupId: groupId, Message: "no values"})
	}
	slices.Sort(values)
	row := Row{
		GroupId: groupId,
		Count:   len(values),
		Min:     values[0],
		Max:     values[len(values)-1],
		Stddev:  math.NaN(),
	}
	row.Median, _ = aggregation.Quantile(values, 0.5)
	row.Q1, _ = aggregation.Quantile(values, 0.25)
	row.Q3, _ = aggregation.Quantile(values, 0.75)
	row.IQR = row.Q3 - row.Q1
	if len(values) < 2 {
		row.Mean = values[0]
		return row, nil
	}
	row.Mean, row.Stddev = stat.MeanStdDev(values, nil)
	return row, nil
}

// Compute summarises every group, using at most parallelism goroutines. Groups without values are
// reported as diagnostics rather than rows. The values of each group may be reordered.
func Compute(ctx *tracetoolcontext.Context, groups map[int64][]float64, params Params, parallelism int) ([]Row, *multierror.Error, error) {
	groupIds := commonslices.SortedKeys(groups)
	rows := make([]Row, len(groupIds))
	errs := make([]error, len(groupIds))

	g, gctx := tracetoolcontext.ErrGroup(ctx, parallelism)
	for i, groupId := range groupIds {
		i, groupId := i, groupId
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			values := groups[groupId]
			if params.Unit > 1 {
				converted := make([]float64, len(values))
				for j, v := range values {
					converted[j] = v / float64(params.Unit)
				}
				values = converted
			}
			rows[i], errs[i] = Summarize(groupId, values)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var diagnostics *multierror.Error
	result := make([]Row, 0, len(rows))
	for i, row := range rows {
		if errs[i] != nil {
			diagnostics = multierror.Append(diagnostics, errs[i])
			continue
		}
		result = append(result, row)
	}
	Sort(result, params.SortBy)
	return result, diagnostics, nil
}

// Sort orders rows by group id, or by Q3 with ties broken by group id.
func Sort(rows []Row, by SortBy) {
	slices.SortFunc(rows, func(a, b Row) bool {
		if by == SortByQ3 && a.Q3 != b.Q3 {
			return a.Q3 < b.Q3
		}
		return a.GroupId < b.GroupId
	})
}
