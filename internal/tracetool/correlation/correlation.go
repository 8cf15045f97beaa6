// Package correlation measures, per group, how much of the joint variance of execution time and overlap is
// explained by a single principal axis. Groups whose execution time varies independently of their overlap
// with other queries score close to 0.5, groups whose execution time is determined by overlap close to 1.
package correlation

import (
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	commonslices "github.com/tracetool/tracetool/internal/common/slices"
	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
	"github.com/tracetool/tracetool/internal/tracetool/aggregation"
)

// Pair is one event of a group: its execution time and the overlap it accumulated, both in nanoseconds.
type Pair struct {
	Timestamp int64   `db:"timestamp"`
	Ordinal   uint32  `db:"ordinal"`
	ExecTime  float64 `db:"exec_time"`
	Overlap   float64 `db:"overlap"`
}

type OverlapMetric string

const (
	// Absolute uses the overlap in nanoseconds.
	Absolute OverlapMetric = "absolute"
	// Percent uses the overlap as a percentage of the event's own execution time.
	Percent OverlapMetric = "percent"
)

type Params struct {
	// Groups with fewer pairs are excluded.
	MinSamples    int           `validate:"gte=2"`
	OverlapMetric OverlapMetric `validate:"oneof=absolute percent"`
	// Unit Q3ExecTime is reported in.
	Q3Unit time.Duration `validate:"gt=0"`
}

func DefaultParams() Params {
	return Params{MinSamples: 20, OverlapMetric: Percent, Q3Unit: time.Millisecond}
}

type Result struct {
	GroupId       int64
	SampleCount   int
	Q3ExecTime    float64
	VarianceRatio float64
}

// Eigenvalues returns the eigenvalues of the symmetric matrix [[a, b], [b, c]], largest first.
// Rounding can't make the smaller one negative; it is clamped at zero.
func Eigenvalues(a, b, c float64) (float64, float64) {
	halfTrace := (a + c) / 2
	d := math.Hypot((a-c)/2, b)
	l1 := halfTrace + d
	l2 := halfTrace - d
	if l2 < 0 {
		l2 = 0
	}
	return l1, l2
}

// VarianceRatio is the fraction of the total variance of the 2x2 covariance matrix cov explained by its largest eigenvalue.
func VarianceRatio(cov *mat.SymDense) (float64, bool) {
	l1, l2 := Eigenvalues(cov.At(0, 0), cov.At(0, 1), cov.At(1, 1))
	total := l1 + l2
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, false
	}
	return l1 / total, true
}

// Analyze computes the result for one group. Pairs whose overlap metric is undefined are skipped and
// returned as diagnostics; a group that is too small or has no variance in either variable is an ErrCompute.
func Analyze(groupId int64, pairs []Pair, params Params) (Result, *multierror.Error, error) {
	var diagnostics *multierror.Error
	execTimes := make([]float64, 0, len(pairs))
	data := make([]float64, 0, 2*len(pairs))
	for _, pair := range pairs {
		overlap := pair.Overlap
		if params.OverlapMetric == Percent {
			if pair.ExecTime <= 0 {
				diagnostics = multierror.Append(diagnostics, &tracetoolerrors.ErrData{
					Timestamp: pair.Timestamp,
					Ordinal:   pair.Ordinal,
					Message:   "overlap percentage of a zero execution time",
				})
				continue
			}
			overlap = overlap / pair.ExecTime * 100
		}
		execTimes = append(execTimes, pair.ExecTime)
		data = append(data, pair.ExecTime, overlap)
	}

	n := len(execTimes)
	if n < params.MinSamples || n < 2 {
		return Result{}, diagnostics, errors.WithStack(&tracetoolerrors.ErrCompute{
			GroupId: groupId,
			Message: fmt.Sprintf("%d samples, at least %d required", n, params.MinSamples),
		})
	}

	observations := mat.NewDense(n, 2, data)
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, observations, nil)
	if cov.At(0, 0) == 0 || cov.At(1, 1) == 0 {
		return Result{}, diagnostics, errors.WithStack(&tracetoolerrors.ErrCompute{
			GroupId: groupId,
			Message: "degenerate covariance: zero variance in execution time or overlap",
		})
	}
	ratio, ok := VarianceRatio(&cov)
	if !ok {
		return Result{}, diagnostics, errors.WithStack(&tracetoolerrors.ErrCompute{
			GroupId: groupId,
			Message: "degenerate covariance: total variance is not a positive finite number",
		})
	}

	slices.Sort(execTimes)
	q3, err := aggregation.Quantile(execTimes, 0.75)
	if err != nil {
		return Result{}, diagnostics, err
	}
	return Result{
		GroupId:       groupId,
		SampleCount:   n,
		Q3ExecTime:    q3 / float64(params.Q3Unit),
		VarianceRatio: ratio,
	}, diagnostics, nil
}

// Compute analyzes every group, using at most parallelism goroutines, and returns the results ordered by
// ascending variance ratio, ties broken by group id. Excluded groups and skipped pairs are returned as diagnostics.
func Compute(ctx *tracetoolcontext.Context, groups map[int64][]Pair, params Params, parallelism int) ([]Result, *multierror.Error, error) {
	groupIds := commonslices.SortedKeys(groups)
	results := make([]Result, len(groupIds))
	excluded := make([]error, len(groupIds))
	skipped := make([]*multierror.Error, len(groupIds))

	g, gctx := tracetoolcontext.ErrGroup(ctx, parallelism)
	for i, groupId := range groupIds {
		i, groupId := i, groupId
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], skipped[i], excluded[i] = Analyze(groupId, groups[groupId], params)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var diagnostics *multierror.Error
	kept := make([]Result, 0, len(results))
	for i, result := range results {
		if skipped[i] != nil {
			diagnostics = multierror.Append(diagnostics, skipped[i].Errors...)
		}
		if excluded[i] != nil {
			diagnostics = multierror.Append(diagnostics, excluded[i])
			continue
		}
		kept = append(kept, result)
	}
	slices.SortFunc(kept, func(a, b Result) bool {
		if a.VarianceRatio != b.VarianceRatio {
			return a.VarianceRatio < b.VarianceRatio
		}
		return a.GroupId < b.GroupId
	})
	return kept, diagnostics, nil
}
