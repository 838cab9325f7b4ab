package profiling

import (
	"math"

	"centival/domain/cohort"

	"github.com/montanaflynn/stats"
)

// Summarize computes summary statistics of data
func Summarize(data []float64) (cohort.Distribution, error) {
	var s cohort.Distribution
	var err error

	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.StdDev, err = stats.StandardDeviationSample(data); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	// Quartiles for IQR-based outlier detection; defined from n = 2
	q, err := stats.Quartile(data)
	if err != nil {
		return s, err
	}
	s.Q25, s.Median, s.Q75 = q.Q1, q.Q2, q.Q3
	s.Skewness = calculateSkewness(data, s.Mean, s.StdDev)
	return s, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

// RelativeTolerance scales with the median; an IQR at or below it counts as zero spread
const RelativeTolerance = 1e-9

// Fences returns the Tukey fences q25 - k*IQR and q75 + k*IQR. When the IQR is
// rounding noise the fences are median +/- tolerance instead.
func Fences(s cohort.Distribution, k float64) (lower, upper float64) {
	eps := RelativeTolerance * math.Max(1, math.Abs(s.Median))
	iqr := s.Q75 - s.Q25
	if iqr <= eps {
		return s.Median - eps, s.Median + eps
	}
	return s.Q25 - k*iqr, s.Q75 + k*iqr
}
