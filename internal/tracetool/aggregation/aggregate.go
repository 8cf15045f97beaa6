// Package aggregation resamples a time ordered series into fixed size buckets, reducing the values of each
// bucket to a single statistic.
package aggregation

import (
	"time"

	"golang.org/x/exp/slices"

	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
)

type Sample struct {
	Timestamp int64   `db:"timestamp"`
	Value     float64 `db:"value"`
}

// Point is the value of a non-empty bucket [BucketStart, BucketStart+size).
type Point struct {
	BucketStart int64
	Value       float64
}

type Bucketing struct {
	Size time.Duration
	// Buckets with fewer values than this produce no point.
	MinCount int
}

func (b Bucketing) Validate() error {
	if b.Size <= 0 {
		return &tracetoolerrors.ErrInput{Name: "aggregation.size", Value: b.Size, Message: "must be positive"}
	}
	if b.MinCount < 0 {
		return &tracetoolerrors.ErrInput{Name: "aggregation.minCount", Value: b.MinCount, Message: "must not be negative"}
	}
	return nil
}

// BucketStart truncates ts to the start of its bucket, rounding towards negative infinity.
func BucketStart(ts int64, size time.Duration) int64 {
	s := int64(size)
	q := ts / s
	if ts%s < 0 {
		q--
	}
	return q * s
}

// Aggregate reduces samples to one point per non-empty bucket, in bucket order. Samples should be ordered by
// timestamp; if they are not, they are ordered with a stable sort so that equal timestamps keep their relative order.
func Aggregate(samples []Sample, mode Mode, bucketing Bucketing) ([]Point, error) {
	if err := bucketing.Validate(); err != nil {
		return nil, err
	}
	if _, ok := modes[mode]; !ok {
		return nil, &tracetoolerrors.ErrInput{Name: "aggregation.mode", Value: mode, Message: "unknown aggregation mode"}
	}
	if !slices.IsSortedFunc(samples, func(a, b Sample) bool { return a.Timestamp < b.Timestamp }) {
		samples = slices.Clone(samples)
		slices.SortStableFunc(samples, func(a, b Sample) bool { return a.Timestamp < b.Timestamp })
	}

	acc := newAccumulator(mode)
	var points []Point
	var open int64
	n := 0
	flush := func() {
		if n > 0 && n >= bucketing.MinCount {
			if v, ok := acc.value(); ok {
				points = append(points, Point{BucketStart: open, Value: v})
			}
		}
		acc.reset()
		n = 0
	}
	for _, sample := range samples {
		start := BucketStart(sample.Timestamp, bucketing.Size)
		if n > 0 && start != open {
			flush()
		}
		open = start
		acc.add(sample.Value)
		n++
	}
	flush()
	return points, nil
}

// ModeSeries is the aggregation of one series under one mode.
type ModeSeries struct {
	Mode   Mode
	Points []Point
}

// AggregateModes runs Aggregate once per mode.
func AggregateModes(samples []Sample, modes []Mode, bucketing Bucketing) ([]ModeSeries, error) {
	result := make([]ModeSeries, 0, len(modes))
	for _, mode := range modes {
		points, err := Aggregate(samples, mode, bucketing)
		if err != nil {
			return nil, err
		}
		result = append(result, ModeSeries{Mode: mode, Points: points})
	}
	return result, nil
}

// Segment splits points wherever consecutive buckets are not adjacent, so that gaps are not drawn over.
func Segment(points []Point, size time.Duration) [][]Point {
	var segments [][]Point
	begin := 0
	for i := 1; i <= len(points); i++ {
		if i == len(points) || points[i].BucketStart-points[i-1].BucketStart > int64(size) {
			segments = append(segments, points[begin:i])
			begin = i
		}
	}
	return segments
}

// Convert divides every value by unit, e.g. to report nanosecond durations in seconds. Count points are left as is.
func Convert(points []Point, mode Mode, unit time.Duration) []Point {
	if mode == Count || unit <= 1 {
		return points
	}
	converted := make([]Point, len(points))
	for i, p := range points {
		converted[i] = Point{BucketStart: p.BucketStart, Value: p.Value / float64(unit)}
	}
	return converted
}

