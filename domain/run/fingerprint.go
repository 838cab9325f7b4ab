package run

import (
	"crypto/sha256"
	"fmt"

	"centival/domain/core"
)

// RunFingerprint identifies runs that must produce identical numbers
type RunFingerprint struct {
	ComputedHash    core.FileHash   `json:"computed_hash"`
	ReferenceHash   core.FileHash   `json:"reference_hash"`
	CohortHash      core.CohortHash `json:"cohort_hash"`
	DuplicatePolicy string          `json:"duplicate_policy"`
	CodeVersion     string          `json:"code_version"`
	Fingerprint     core.Hash       `json:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from determinism parameters
func NewRunFingerprint(computed, reference core.FileHash, cohort core.CohortHash,
	duplicatePolicy, codeVersion string) RunFingerprint {

	return RunFingerprint{
		ComputedHash:    computed,
		ReferenceHash:   reference,
		CohortHash:      cohort,
		DuplicatePolicy: duplicatePolicy,
		CodeVersion:     codeVersion,
		Fingerprint:     computeRunFingerprint(computed, reference, cohort, duplicatePolicy, codeVersion),
	}
}

func computeRunFingerprint(computed, reference core.FileHash, cohort core.CohortHash,
	duplicatePolicy, codeVersion string) core.Hash {

	data := fmt.Sprintf("computed:%s|reference:%s|cohort:%s|duplicates:%s|code:%s",
		computed, reference, cohort, duplicatePolicy, codeVersion)

	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
