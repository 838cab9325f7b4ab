package analysis

import (
	"fmt"

	apperrors "centival/internal/errors"

	"gonum.org/v1/gonum/stat"
)

// FitOLS fits y = slope*x + intercept by ordinary least squares
func FitOLS(x, y []float64) (slope, intercept float64, err error) {
	if len(x) != len(y) {
		return 0, 0, apperrors.InternalError(fmt.Sprintf("series lengths differ: %d vs %d", len(x), len(y)))
	}
	if len(x) < 2 {
		return 0, 0, apperrors.InsufficientSample(len(x), 2)
	}
	if err := requireVariance(x, "computed"); err != nil {
		return 0, 0, err
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	return beta, alpha, nil
}
