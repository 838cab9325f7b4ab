package run

import (
	"fmt"

	"centival/domain/cohort"
	"centival/domain/core"
)

// InputFile records one input table of a run
type InputFile struct {
	Path string        `json:"path"`
	Hash core.FileHash `json:"sha256"`
	Rows int           `json:"rows"`
}

// RunManifest describes a completed validation run. It is written next to the
// figure for provenance and is never read back by the tool.
type RunManifest struct {
	RunID       core.RunID            `json:"run_id"`
	Computed    InputFile             `json:"computed"`
	Reference   InputFile             `json:"reference"`
	Subjects    int                   `json:"subjects"`
	CohortHash  core.CohortHash       `json:"cohort_hash"`
	Results     cohort.Results        `json:"results"`
	Unmatched   Unmatched             `json:"unmatched"`
	Records     []cohort.MergedRecord `json:"records,omitempty"` // merged per-subject values in row order
	Artifacts   []core.Artifact       `json:"artifacts"`
	CodeVersion string                `json:"code_version"`
	Fingerprint RunFingerprint        `json:"fingerprint"`
	CreatedAt   core.Timestamp        `json:"created_at"`
}

// Unmatched lists subject IDs present on only one side of the join
type Unmatched struct {
	Computed  []string `json:"computed,omitempty"`
	Reference []string `json:"reference,omitempty"`
}

// NewRunManifest assembles a manifest; subjectIDs are the merged identifiers
func NewRunManifest(
	runID core.RunID,
	computed, reference InputFile,
	subjectIDs []string,
	results cohort.Results,
	duplicatePolicy string,
	codeVersion string,
) *RunManifest {
	cohortHash := core.ComputeCohortHash(subjectIDs)
	return &RunManifest{
		RunID:       runID,
		Computed:    computed,
		Reference:   reference,
		Subjects:    len(subjectIDs),
		CohortHash:  cohortHash,
		Results:     results,
		CodeVersion: codeVersion,
		Fingerprint: NewRunFingerprint(computed.Hash, reference.Hash, cohortHash, duplicatePolicy, codeVersion),
		CreatedAt:   core.Now(),
	}
}

// AddArtifact records an output file
func (m *RunManifest) AddArtifact(kind core.ArtifactKind, path string) {
	m.Artifacts = append(m.Artifacts, core.Artifact{Kind: kind, Path: path})
}

// Validate checks if the manifest is complete
func (m *RunManifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return fmt.Errorf("run_manifest: run_id cannot be empty")
	}
	if m.Computed.Hash == "" || m.Reference.Hash == "" {
		return fmt.Errorf("run_manifest: input hashes cannot be empty")
	}
	if m.CohortHash == "" {
		return fmt.Errorf("run_manifest: cohort_hash cannot be empty")
	}
	if m.Subjects != m.Results.SUVR.N || m.Subjects != m.Results.Centiloid.N {
		return fmt.Errorf("run_manifest: %d subjects but results cover %d/%d",
			m.Subjects, m.Results.SUVR.N, m.Results.Centiloid.N)
	}
	if len(m.Records) > 0 && len(m.Records) != m.Subjects {
		return fmt.Errorf("run_manifest: %d subjects but %d records", m.Subjects, len(m.Records))
	}
	return nil
}
