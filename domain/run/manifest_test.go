package run

import (
	"testing"

	"centival/domain/cohort"
	"centival/domain/core"
)

func TestRunFingerprint_Deterministic(t *testing.T) {
	computed := core.FileHash("computed-hash")
	reference := core.FileHash("reference-hash")
	cohortHash := core.CohortHash("cohort-hash")

	fp1 := NewRunFingerprint(computed, reference, cohortHash, "keep_first", "1.0.0")
	fp2 := NewRunFingerprint(computed, reference, cohortHash, "keep_first", "1.0.0")

	if fp1.Fingerprint != fp2.Fingerprint {
		t.Errorf("Fingerprints not identical: %s vs %s", fp1.Fingerprint, fp2.Fingerprint)
	}
	if fp1.CohortHash != cohortHash {
		t.Errorf("CohortHash mismatch: %s vs %s", fp1.CohortHash, cohortHash)
	}
}

func TestRunFingerprint_Unique(t *testing.T) {
	base := NewRunFingerprint("c", "r", "h", "keep_first", "1.0.0")

	testCases := []struct {
		name string
		fp   RunFingerprint
	}{
		{"different computed", NewRunFingerprint("c2", "r", "h", "keep_first", "1.0.0")},
		{"different reference", NewRunFingerprint("c", "r2", "h", "keep_first", "1.0.0")},
		{"different cohort", NewRunFingerprint("c", "r", "h2", "keep_first", "1.0.0")},
		{"different policy", NewRunFingerprint("c", "r", "h", "error", "1.0.0")},
		{"different code", NewRunFingerprint("c", "r", "h", "keep_first", "1.0.1")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.fp.Fingerprint == base.Fingerprint {
				t.Errorf("Fingerprint should differ for %s", tc.name)
			}
		})
	}
}

func validManifest() *RunManifest {
	results := cohort.Results{
		SUVR:      cohort.CorrelationResult{Metric: cohort.MetricSUVR, N: 3, R: 0.99},
		Centiloid: cohort.CorrelationResult{Metric: cohort.MetricCentiloid, N: 3, R: 0.98},
	}
	return NewRunManifest(
		core.NewRunID(),
		InputFile{Path: "computed.csv", Hash: "aaa", Rows: 4},
		InputFile{Path: "reference.csv", Hash: "bbb", Rows: 3},
		[]string{"sub-03", "sub-01", "sub-02"},
		results,
		"keep_first",
		"dev",
	)
}

func TestRunManifest_CohortHashIgnoresOrder(t *testing.T) {
	m := validManifest()
	want := core.ComputeCohortHash([]string{"sub-01", "sub-02", "sub-03"})
	if m.CohortHash != want {
		t.Errorf("CohortHash mismatch: %s vs %s", m.CohortHash, want)
	}
	if m.Subjects != 3 {
		t.Errorf("Subjects = %d, want 3", m.Subjects)
	}
}

func TestRunManifest_Validate(t *testing.T) {
	if err := validManifest().Validate(); err != nil {
		t.Fatalf("valid manifest rejected: %v", err)
	}

	m := validManifest()
	m.RunID = ""
	if err := m.Validate(); err == nil {
		t.Error("expected error for empty run_id")
	}

	m = validManifest()
	m.Results.Centiloid.N = 2
	if err := m.Validate(); err == nil {
		t.Error("expected error for mismatched result size")
	}

	m = validManifest()
	m.Records = []cohort.MergedRecord{{SubjectID: "sub-01"}}
	if err := m.Validate(); err == nil {
		t.Error("expected error for records not covering every subject")
	}
}

func TestRunManifest_AddArtifact(t *testing.T) {
	m := validManifest()
	m.AddArtifact(core.ArtifactFigure, "results/correlation_plots.png")

	if len(m.Artifacts) != 1 || m.Artifacts[0].Kind != core.ArtifactFigure {
		t.Errorf("unexpected artifacts: %+v", m.Artifacts)
	}
}
