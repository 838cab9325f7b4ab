package report

import (
	"centival/domain/run"
	apperrors "centival/internal/errors"
	"centival/internal/fsutil"
)

// ManifestFileName is the JSON run manifest written into the output directory
const ManifestFileName = "validation_manifest.json"

// WriteManifest validates m and writes it as indented JSON
func WriteManifest(path string, m *run.RunManifest) error {
	if err := m.Validate(); err != nil {
		return apperrors.WithCode(apperrors.CodeInternalError, err)
	}
	data, err := fsutil.PrettyJSON(m, "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data)
}
