package cohort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultsGetSet(t *testing.T) {
	var r Results
	require.NoError(t, r.Set(CorrelationResult{Metric: MetricCentiloid, R: 0.9}))
	got, err := r.Get(MetricCentiloid)
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.R)

	assert.Error(t, r.Set(CorrelationResult{Metric: "amyloid"}))
	_, err = r.Get("amyloid")
	assert.Error(t, err)
}

func TestMetricPairsLabels(t *testing.T) {
	require.Len(t, MetricPairs, 2)
	assert.Equal(t, "Calculated SUVR", MetricPairs[0].XLabel)
	assert.Equal(t, "Reference SUVR", MetricPairs[0].YLabel)
	assert.Equal(t, "Calculated Centiloid", MetricPairs[1].XLabel)
	assert.Equal(t, "Reference Centiloid", MetricPairs[1].YLabel)
}
