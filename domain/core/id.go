package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// RunID identifies one validation run. It only labels outputs and log lines.
type RunID ID

// NewRunID creates a fresh run identifier
func NewRunID() RunID { return RunID(NewID()) }

func (id RunID) String() string { return ID(id).String() }

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("run ID %q is not a UUID: %w", s, err)
	}
	return RunID(s), nil
}

// ArtifactKind defines types of files a run produces
type ArtifactKind string

const (
	ArtifactFigure   ArtifactKind = "correlation_figure"
	ArtifactSummary  ArtifactKind = "markdown_summary"
	ArtifactManifest ArtifactKind = "run_manifest"
	ArtifactTextLog  ArtifactKind = "text_report"
)

// Artifact records one output file of a run
type Artifact struct {
	Kind ArtifactKind `json:"kind"`
	Path string       `json:"path"`
}
