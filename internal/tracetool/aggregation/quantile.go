package aggregation

import (
	"math"

	"github.com/pkg/errors"

	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
)

// Quantile returns the p-quantile of sorted by linear interpolation between the two order statistics
// nearest to rank p*(n-1).
func Quantile(sorted []float64, p float64) (float64, error) {
	if len(sorted) == 0 {
		return 0, errors.WithStack(&tracetoolerrors.ErrCompute{Message: "quantile of an empty sample"})
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, errors.Errorf("quantile %f is outside [0, 1]", p)
	}
	rank := p * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower], nil
	}
	fraction := rank - float64(lower)
	return sorted[lower] + fraction*(sorted[upper]-sorted[lower]), nil
}
