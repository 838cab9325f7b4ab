package profiling

import (
	"fmt"

	"centival/domain/cohort"
	apperrors "centival/internal/errors"
)

// TukeyK is the conventional fence multiplier
const TukeyK = 1.5

// DifferenceProfile describes the paired differences reference - computed of one metric
type DifferenceProfile struct {
	Summary  cohort.Distribution `json:"summary"`
	Lower    float64             `json:"lower_fence"`
	Upper    float64             `json:"upper_fence"`
	Outliers []string            `json:"outliers,omitempty"` // subject IDs outside the fences, in input order
}

// ProfileDifferences flags subjects whose reference - computed difference lies
// outside the Tukey fences. ids, computed and reference are parallel.
func ProfileDifferences(ids []string, computed, reference []float64) (DifferenceProfile, error) {
	if len(ids) != len(computed) || len(computed) != len(reference) {
		return DifferenceProfile{}, apperrors.InternalError(fmt.Sprintf(
			"profile needs parallel slices, got %d ids, %d computed, %d reference", len(ids), len(computed), len(reference)))
	}
	if len(ids) < 2 {
		return DifferenceProfile{}, apperrors.InsufficientSample(len(ids), 2)
	}

	diff := make([]float64, len(computed))
	for i := range computed {
		diff[i] = reference[i] - computed[i]
	}

	summary, err := Summarize(diff)
	if err != nil {
		return DifferenceProfile{}, apperrors.Wrap(err, "summarize differences")
	}
	p := DifferenceProfile{Summary: summary}
	p.Lower, p.Upper = Fences(summary, TukeyK)
	for i, d := range diff {
		if d < p.Lower || d > p.Upper {
			p.Outliers = append(p.Outliers, ids[i])
		}
	}
	return p, nil
}
