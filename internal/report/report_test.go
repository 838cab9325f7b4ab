package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"centival/domain/cohort"
	"centival/domain/core"
	"centival/domain/run"
	apperrors "centival/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() cohort.Results {
	return cohort.Results{
		SUVR: cohort.CorrelationResult{
			Metric: cohort.MetricSUVR, N: 3, R: 0.99991, PValue: 0.0012345,
			Slope: 1, Intercept: 0.05, MeanComputed: 1.5, MeanReference: 1.55, MeanDifference: 0.05,
		},
		Centiloid: cohort.CorrelationResult{
			Metric: cohort.MetricCentiloid, N: 3, R: 0.9, PValue: 0.287,
			Slope: 1, Intercept: 2, MeanComputed: 40, MeanReference: 42, MeanDifference: 2,
			Outliers: []string{"sub-07"},
		},
	}
}

func TestWriteTextFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, 3, sampleResults()))

	want := "\n=== STATISTICAL ANALYSIS RESULTS ===\n" +
		"Number of Subjects: 3\n" +
		"\n1. Global Cortical SUVR Correlation:\n" +
		"   Pearson r: 0.9999\n" +
		"   p-value:   1.2345e-03\n" +
		"\n2. Centiloid Value Correlation:\n" +
		"   Pearson r: 0.9000\n" +
		"   p-value:   2.8700e-01\n" +
		"====================================\n\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteAgreement(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAgreement(&buf, sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "Mean diff")
	assert.Contains(t, out, "SUVR")
	assert.Contains(t, out, "Centiloid")
	assert.Contains(t, out, "+2.0000")
	assert.Contains(t, out, "sub-07")
}

func TestRenderMarkdown(t *testing.T) {
	doc, err := RenderMarkdown(Summary{
		RunID:         "run-1",
		ComputedPath:  "all_subjects_results.csv",
		ReferencePath: "Centiloid_Project_Values.csv",
		Subjects:      3,
		Results:       sampleResults(),
		FigurePath:    filepath.Join("results", "correlation_plots.png"),
		Unmatched:     []string{"sub-09"},
	})
	require.NoError(t, err)

	assert.Contains(t, doc, "# Centiloid Validation Summary")
	assert.Contains(t, doc, "| SUVR | 3 | 0.9999 | 1.2345e-03 |")
	assert.Contains(t, doc, "![Correlation plots](correlation_plots.png)")
	assert.Contains(t, doc, "1 computed subjects had no reference values: sub-09")
	assert.Contains(t, doc, "Centiloid difference outliers (Tukey fences): sub-07")
}

func TestWriteMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), SummaryFileName)
	require.NoError(t, WriteMarkdown(path, Summary{RunID: "r", Subjects: 3, Results: sampleResults()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Matched subjects: 3")
}

func TestWriteManifest(t *testing.T) {
	m := run.NewRunManifest(
		core.NewRunID(),
		run.InputFile{Path: "a.csv", Hash: "aa", Rows: 3},
		run.InputFile{Path: "b.csv", Hash: "bb", Rows: 3},
		[]string{"sub-01", "sub-02", "sub-03"},
		sampleResults(),
		"keep_first",
		"dev",
	)
	m.AddArtifact(core.ArtifactFigure, "correlation_plots.png")

	path := filepath.Join(t.TempDir(), ManifestFileName)
	require.NoError(t, WriteManifest(path, m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(3), decoded["subjects"])
	assert.Equal(t, string(m.RunID), decoded["run_id"])
	assert.NotEmpty(t, decoded["cohort_hash"])
}

func TestWriteManifestRejectsIncomplete(t *testing.T) {
	m := &run.RunManifest{}
	err := WriteManifest(filepath.Join(t.TempDir(), ManifestFileName), m)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternalError, apperrors.GetCode(err))
}

func TestPreview(t *testing.T) {
	tbl, err := cohort.NewTable("p.csv", []string{"subject_id", "v"},
		[][]string{{"sub-01", "1"}, {"sub-02", "2"}, {"sub-03", "3"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	Preview(&buf, tbl, 2)
	out := buf.String()
	assert.Contains(t, out, "subject_id")
	assert.Contains(t, out, "sub-02")
	assert.NotContains(t, out, "sub-03")
	assert.Contains(t, out, "... 1 more rows")
}
