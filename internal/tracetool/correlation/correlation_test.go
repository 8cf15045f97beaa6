package correlation

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
)

var absolute = Params{MinSamples: 2, OverlapMetric: Absolute, Q3Unit: time.Nanosecond}

func TestEigenvalues(t *testing.T) {
	tests := map[string]struct {
		a, b, c float64
		l1, l2  float64
	}{
		"diagonal":         {a: 3, b: 0, c: 1, l1: 3, l2: 1},
		"diagonal swapped": {a: 1, b: 0, c: 3, l1: 3, l2: 1},
		"isotropic":        {a: 2, b: 0, c: 2, l1: 2, l2: 2},
		"singular":         {a: 1, b: 2, c: 4, l1: 5, l2: 0},
		"general":          {a: 2, b: 1, c: 2, l1: 3, l2: 1},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			l1, l2 := Eigenvalues(tc.a, tc.b, tc.c)
			assert.InDelta(t, tc.l1, l1, 1e-12)
			assert.InDelta(t, tc.l2, l2, 1e-12)
			assert.GreaterOrEqual(t, l2, 0.0)
			// Trace and determinant are preserved.
			assert.InDelta(t, tc.a+tc.c, l1+l2, 1e-12)
			assert.InDelta(t, tc.a*tc.c-tc.b*tc.b, l1*l2, 1e-9)
		})
	}
}

func TestVarianceRatio_Bounds(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	for i := 0; i < 1000; i++ {
		// Any A^T A is positive semi-definite.
		x, y, z, w := r.NormFloat64(), r.NormFloat64(), r.NormFloat64(), r.NormFloat64()
		cov := mat.NewSymDense(2, []float64{x*x + z*z, x*y + z*w, x*y + z*w, y*y + w*w})
		ratio, ok := VarianceRatio(cov)
		require.True(t, ok)
		assert.GreaterOrEqual(t, ratio, 0.5)
		assert.LessOrEqual(t, ratio, 1.0)
	}
	_, ok := VarianceRatio(mat.NewSymDense(2, []float64{0, 0, 0, 0}))
	assert.False(t, ok)
}

func TestAnalyze_LinearlyDetermined(t *testing.T) {
	pairs := make([]Pair, 50)
	for i := range pairs {
		overlap := float64(i * 1000)
		pairs[i] = Pair{Timestamp: int64(i), ExecTime: 3*overlap + 500, Overlap: overlap}
	}
	result, diagnostics, err := Analyze(4, pairs, absolute)
	require.NoError(t, err)
	assert.Nil(t, diagnostics)
	assert.Equal(t, int64(4), result.GroupId)
	assert.Equal(t, 50, result.SampleCount)
	assert.InDelta(t, 1.0, result.VarianceRatio, 1e-9)
}

func TestAnalyze_Independent(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	pairs := make([]Pair, 20000)
	for i := range pairs {
		pairs[i] = Pair{Timestamp: int64(i), ExecTime: 1e6 + 1e3*r.NormFloat64(), Overlap: 5e5 + 1e3*r.NormFloat64()}
	}
	result, _, err := Analyze(1, pairs, absolute)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, result.VarianceRatio, 0.02)
}

func TestAnalyze_Q3(t *testing.T) {
	pairs := []Pair{
		{ExecTime: 1e6, Overlap: 0},
		{ExecTime: 2e6, Overlap: 5e5},
		{ExecTime: 3e6, Overlap: 1e5},
		{ExecTime: 4e6, Overlap: 2e6},
	}
	params := absolute
	params.Q3Unit = time.Millisecond
	result, _, err := Analyze(1, pairs, params)
	require.NoError(t, err)
	assert.InDelta(t, 3.25, result.Q3ExecTime, 1e-12)
}

func TestAnalyze_Degenerate(t *testing.T) {
	tests := map[string][]Pair{
		"constant execution time": {{ExecTime: 5, Overlap: 1}, {ExecTime: 5, Overlap: 2}, {ExecTime: 5, Overlap: 3}},
		"constant overlap":        {{ExecTime: 1, Overlap: 7}, {ExecTime: 2, Overlap: 7}, {ExecTime: 3, Overlap: 7}},
		"single sample":           {{ExecTime: 1, Overlap: 7}},
	}
	for name, pairs := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := Analyze(2, pairs, absolute)
			assert.True(t, tracetoolerrors.IsCompute(err))
		})
	}
}

func TestAnalyze_MinSamples(t *testing.T) {
	pairs := []Pair{{ExecTime: 1, Overlap: 3}, {ExecTime: 2, Overlap: 1}, {ExecTime: 3, Overlap: 2}}
	params := absolute
	params.MinSamples = 4
	_, _, err := Analyze(2, pairs, params)
	assert.True(t, tracetoolerrors.IsCompute(err))
	params.MinSamples = 3
	_, _, err = Analyze(2, pairs, params)
	assert.NoError(t, err)
}

func TestAnalyze_Percent(t *testing.T) {
	pairs := []Pair{
		{Timestamp: 1, ExecTime: 100, Overlap: 50},
		{Timestamp: 2, ExecTime: 0, Overlap: 0},
		{Timestamp: 3, ExecTime: 200, Overlap: 50},
		{Timestamp: 4, ExecTime: 400, Overlap: 300},
	}
	params := absolute
	params.OverlapMetric = Percent
	result, diagnostics, err := Analyze(1, pairs, params)
	require.NoError(t, err)
	assert.Equal(t, 3, result.SampleCount)
	require.NotNil(t, diagnostics)
	require.Len(t, diagnostics.Errors, 1)
	assert.True(t, tracetoolerrors.IsData(diagnostics.Errors[0]))
}

func TestCompute(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	groups := map[int64][]Pair{}
	// Group 1: strongly correlated, group 2: independent, group 3: degenerate, group 4: tied with group 1.
	for i := 0; i < 200; i++ {
		overlap := r.Float64() * 1000
		groups[1] = append(groups[1], Pair{ExecTime: 2 * overlap, Overlap: overlap})
		groups[4] = append(groups[4], Pair{ExecTime: 2 * overlap, Overlap: overlap})
		groups[2] = append(groups[2], Pair{ExecTime: 1000 + 10*r.NormFloat64(), Overlap: 10 * r.NormFloat64()})
		groups[3] = append(groups[3], Pair{ExecTime: 1000, Overlap: overlap})
	}
	results, diagnostics, err := Compute(tracetoolcontext.Background(), groups, absolute, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []int64{2, 1, 4}, []int64{results[0].GroupId, results[1].GroupId, results[2].GroupId})
	for _, result := range results {
		assert.GreaterOrEqual(t, result.VarianceRatio, 0.5)
		assert.LessOrEqual(t, result.VarianceRatio, 1.0)
		assert.False(t, math.IsNaN(result.VarianceRatio))
	}
	require.NotNil(t, diagnostics)
	require.Len(t, diagnostics.Errors, 1)
	assert.Contains(t, diagnostics.Errors[0].Error(), "group 3")

	again, _, err := Compute(tracetoolcontext.Background(), groups, absolute, 1)
	require.NoError(t, err)
	assert.Equal(t, results, again)
}
