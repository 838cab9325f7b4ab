package analysis

import (
	"fmt"
	"math"

	apperrors "centival/internal/errors"

	"gonum.org/v1/gonum/stat"
)

// MinSampleSize is the smallest n for which a correlation p-value is defined
const MinSampleSize = 3

var distributions = NewDistributions()

// Pearson returns the linear correlation of x and y and its two-sided p-value.
// It fails instead of returning NaN: n < 3 and constant series are errors.
func Pearson(x, y []float64) (r, p float64, err error) {
	if len(x) != len(y) {
		return 0, 0, apperrors.InternalError(fmt.Sprintf("series lengths differ: %d vs %d", len(x), len(y)))
	}
	n := len(x)
	if n < MinSampleSize {
		return 0, 0, apperrors.InsufficientSample(n, MinSampleSize)
	}
	if err := requireVariance(x, "computed"); err != nil {
		return 0, 0, err
	}
	if err := requireVariance(y, "reference"); err != nil {
		return 0, 0, err
	}

	r = stat.Correlation(x, y, nil)
	r = math.Max(-1, math.Min(1, r))
	return r, distributions.CorrelationPValue(r, n), nil
}

func requireVariance(v []float64, side string) error {
	for _, x := range v[1:] {
		if x != v[0] {
			return nil
		}
	}
	return apperrors.DegenerateSample(fmt.Sprintf("%s values are all %g; correlation is undefined for a constant series", side, v[0]))
}
