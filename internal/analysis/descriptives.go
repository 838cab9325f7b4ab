package analysis

import (
	"github.com/montanaflynn/stats"
)

// Agreement summarizes how paired computed and reference values differ
type Agreement struct {
	MeanComputed   float64
	MeanReference  float64
	MeanDifference float64 // reference - computed
	SDDifference   float64 // sample standard deviation of the differences
}

// Describe computes agreement statistics of paired samples. Callers ensure len(x) == len(y) >= 2.
func Describe(computed, reference []float64) Agreement {
	diff := make([]float64, len(computed))
	for i := range computed {
		diff[i] = reference[i] - computed[i]
	}

	meanX, _ := stats.Mean(computed)
	meanY, _ := stats.Mean(reference)
	meanD, _ := stats.Mean(diff)
	sdD, _ := stats.StandardDeviationSample(diff)

	return Agreement{
		MeanComputed:   meanX,
		MeanReference:  meanY,
		MeanDifference: meanD,
		SDDifference:   sdD,
	}
}
