package profiling

import (
	"testing"

	"centival/domain/cohort"
	apperrors "centival/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileDifferencesFlagsOutlier(t *testing.T) {
	ids := []string{"sub-01", "sub-02", "sub-03", "sub-04", "sub-05", "sub-06", "sub-07", "sub-08"}
	computed := []float64{10, 20, 30, 40, 50, 60, 70, 80}
	reference := []float64{12, 22, 31, 42, 52, 61, 72, 110}

	p, err := ProfileDifferences(ids, computed, reference)
	require.NoError(t, err)

	assert.Equal(t, []string{"sub-08"}, p.Outliers)
	assert.Less(t, p.Lower, 1.0)
	assert.Greater(t, p.Upper, 2.0)
	assert.Equal(t, 1.0, p.Summary.Min)
	assert.Equal(t, 30.0, p.Summary.Max)
}

func TestProfileDifferencesConstantOffset(t *testing.T) {
	p, err := ProfileDifferences([]string{"a", "b", "c"}, []float64{1, 2, 3}, []float64{3, 4, 5})
	require.NoError(t, err)
	assert.Empty(t, p.Outliers)
	assert.Equal(t, 2.0, p.Summary.Mean)
	assert.Equal(t, 0.0, p.Summary.Skewness)
}

func TestProfileDifferencesErrors(t *testing.T) {
	_, err := ProfileDifferences([]string{"a"}, []float64{1, 2}, []float64{1, 2})
	assert.Equal(t, apperrors.CodeInternalError, apperrors.GetCode(err))

	_, err = ProfileDifferences([]string{"a"}, []float64{1}, []float64{1})
	assert.Equal(t, apperrors.CodeInsufficientSample, apperrors.GetCode(err))
}

func TestSummarySkewnessSign(t *testing.T) {
	s, err := Summarize([]float64{1, 1, 1, 2, 2, 3, 10})
	require.NoError(t, err)
	assert.Greater(t, s.Skewness, 0.0)
}

func TestProfileDifferencesIgnoresRoundingNoise(t *testing.T) {
	ids := []string{"sub-01", "sub-02", "sub-03", "sub-04", "sub-05", "sub-06", "sub-07", "sub-08", "sub-09", "sub-10"}
	computed := make([]float64, len(ids))
	reference := make([]float64, len(ids))
	for i := range ids {
		computed[i] = 1.1 + 0.1*float64(i)
		reference[i] = computed[i] + 0.05
	}

	p, err := ProfileDifferences(ids, computed, reference)
	require.NoError(t, err)
	assert.Empty(t, p.Outliers)
	assert.InDelta(t, 0.05, p.Lower, 1e-8)
	assert.InDelta(t, 0.05, p.Upper, 1e-8)
}

func TestProfileDifferencesZeroSpreadStillFlagsRealOutlier(t *testing.T) {
	ids := []string{"sub-01", "sub-02", "sub-03", "sub-04", "sub-05", "sub-06", "sub-07", "sub-08"}
	computed := []float64{10, 20, 30, 40, 50, 60, 70, 80}
	reference := []float64{12, 22, 32, 42, 52, 62, 72, 95}

	p, err := ProfileDifferences(ids, computed, reference)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-08"}, p.Outliers)
}

func TestFences(t *testing.T) {
	lower, upper := Fences(cohort.Distribution{Q25: 1, Median: 2, Q75: 3}, TukeyK)
	assert.Equal(t, -2.0, lower)
	assert.Equal(t, 6.0, upper)

	lower, upper = Fences(cohort.Distribution{Q25: 5, Median: 5, Q75: 5 + 1e-15}, TukeyK)
	assert.InDelta(t, 5.0, lower, 1e-8)
	assert.InDelta(t, 5.0, upper, 1e-8)
	assert.Less(t, lower, 5.0)
	assert.Greater(t, upper, 5.0)
}
