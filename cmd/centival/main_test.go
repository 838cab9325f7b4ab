package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	apperrors "centival/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func TestValidateFlatProfile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "all_subjects_results.csv"), []byte(
		"subject_id,global_cortical_suvr,global_cortical_centiloid\nsub-01,1.20,10\nsub-02,1.50,40\nsub-03,1.80,70\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Centiloid_Project_Values.csv"), []byte(
		"Subject,SUVR,Centiloid\nsub-01,1.25,12\nsub-02,1.55,42\nsub-03,1.85,72\n"), 0o644))

	out, err := execute(t, "validate", "--profile", "flat", "--project-root", root,
		"--log", filepath.Join(root, "validation.log"))
	require.NoError(t, err)

	assert.Contains(t, out, "Number of Subjects: 3")
	assert.FileExists(t, filepath.Join(root, "correlation_plots.png"))
	assert.FileExists(t, filepath.Join(root, "validation.log"))
	assert.FileExists(t, filepath.Join(root, "validation_manifest.json"))
}

func TestValidatePositionalOverridesProfile(t *testing.T) {
	root := t.TempDir()
	_, err := execute(t, "validate", filepath.Join(root, "elsewhere.csv"), "--profile", "flat", "--project-root", root)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeMissingInput, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "elsewhere.csv")
}

func TestValidateRejectsUnknownProfile(t *testing.T) {
	_, err := execute(t, "validate", "--profile", "colab")
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
}

func TestFixSidecar(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"TracerName":"PiB"}`), 0o644))
	outPath := filepath.Join(dir, "out.json")

	out, err := execute(t, "fix-sidecar", outPath, in)
	require.NoError(t, err)
	assert.Contains(t, out, "24 keys injected")
	assert.FileExists(t, outPath)
}

func TestFixSidecarNeedsInputs(t *testing.T) {
	_, err := execute(t, "fix-sidecar", "out.json")
	assert.Error(t, err)
}

func TestQCReportNoSubjects(t *testing.T) {
	qc := t.TempDir()
	out, err := execute(t, "qc-report", "--qc-dir", qc)
	require.NoError(t, err)
	assert.Contains(t, out, "No subject QC folders found.")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "centival.yaml")
	_, err := execute(t, "config", "init", "--path", path, "--profile", "drive")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "profile: drive")

	_, err = execute(t, "config", "init", "--path", path)
	assert.Error(t, err, "existing file is not overwritten")
}
