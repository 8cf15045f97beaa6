package aggregation

import (
	"math"

	"golang.org/x/exp/slices"
)

// accumulator summarises the values of one bucket. ok is false if the bucket has no defined value.
type accumulator interface {
	add(v float64)
	value() (v float64, ok bool)
	reset()
}

func newAccumulator(mode Mode) accumulator {
	switch mode {
	case Mean:
		return &meanAccumulator{}
	case Sum:
		return &sumAccumulator{}
	case Min:
		return &extremumAccumulator{less: func(a, b float64) bool { return a < b }}
	case Max:
		return &extremumAccumulator{less: func(a, b float64) bool { return a > b }}
	case Count:
		return &countAccumulator{}
	case Stddev:
		return &stddevAccumulator{}
	case Median:
		return &quantileAccumulator{p: 0.5}
	case Q1:
		return &quantileAccumulator{p: 0.25}
	case Q3:
		return &quantileAccumulator{p: 0.75}
	case IQR:
		return &quantileAccumulator{iqr: true}
	}
	panic("unknown aggregation mode " + string(mode))
}

// kahanSum is a compensated sum.
type kahanSum struct {
	sum          float64
	compensation float64
}

func (k *kahanSum) add(v float64) {
	y := v - k.compensation
	t := k.sum + y
	k.compensation = (t - k.sum) - y
	k.sum = t
}

type sumAccumulator struct {
	sum kahanSum
	n   int
}

func (a *sumAccumulator) add(v float64) {
	a.sum.add(v)
	a.n++
}

func (a *sumAccumulator) value() (float64, bool) { return a.sum.sum, a.n > 0 }

func (a *sumAccumulator) reset() { *a = sumAccumulator{} }

type meanAccumulator struct {
	sumAccumulator
}

func (a *meanAccumulator) value() (float64, bool) {
	if a.n == 0 {
		return 0, false
	}
	return a.sum.sum / float64(a.n), true
}

func (a *meanAccumulator) reset() { *a = meanAccumulator{} }

type extremumAccumulator struct {
	less    func(a, b float64) bool
	current float64
	n       int
}

func (a *extremumAccumulator) add(v float64) {
	if a.n == 0 || a.less(v, a.current) {
		a.current = v
	}
	a.n++
}

func (a *extremumAccumulator) value() (float64, bool) { return a.current, a.n > 0 }

func (a *extremumAccumulator) reset() {
	a.current = 0
	a.n = 0
}

type countAccumulator struct {
	n int
}

func (a *countAccumulator) add(float64) { a.n++ }

func (a *countAccumulator) value() (float64, bool) { return float64(a.n), a.n > 0 }

func (a *countAccumulator) reset() { a.n = 0 }

// stddevAccumulator uses Welford's algorithm. The sample standard deviation is undefined for fewer than two values.
type stddevAccumulator struct {
	n    int
	mean float64
	m2   float64
}

func (a *stddevAccumulator) add(v float64) {
	a.n++
	delta := v - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (v - a.mean)
}

func (a *stddevAccumulator) value() (float64, bool) {
	if a.n < 2 {
		return math.NaN(), false
	}
	return math.Sqrt(a.m2 / float64(a.n-1)), true
}

func (a *stddevAccumulator) reset() { *a = stddevAccumulator{} }

// quantileAccumulator retains the values of the open bucket. They are sorted when the bucket closes and
// discarded on reset; the backing array is reused.
type quantileAccumulator struct {
	p      float64
	iqr    bool
	values []float64
}

func (a *quantileAccumulator) add(v float64) { a.values = append(a.values, v) }

func (a *quantileAccumulator) value() (float64, bool) {
	if len(a.values) == 0 {
		return 0, false
	}
	slices.Sort(a.values)
	if a.iqr {
		q1, _ := Quantile(a.values, 0.25)
		q3, _ := Quantile(a.values, 0.75)
		return q3 - q1, true
	}
	v, _ := Quantile(a.values, a.p)
	return v, true
}

func (a *quantileAccumulator) reset() { a.values = a.values[:0] }
