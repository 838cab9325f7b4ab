package app

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"centival/domain/cohort"
	"centival/domain/core"
	"centival/domain/run"
	"centival/internal"
	"centival/internal/analysis"
	apperrors "centival/internal/errors"
	"centival/internal/fsutil"
	"centival/internal/report"
	"centival/ports"
)

// PreviewRows is how many rows of each input are echoed before the join
const PreviewRows = 5

// ValidationService runs one centiloid validation: load, normalize, join,
// correlate, report.
type ValidationService struct {
	reader   ports.TableReaderPort
	renderer ports.FigureRendererPort
	logger   *internal.Logger
	out      io.Writer
}

// ValidationRequest names the inputs and outputs of a run
type ValidationRequest struct {
	ComputedPath    string
	ReferencePath   string
	OutputDir       string
	FigurePath      string // defaults to <OutputDir>/correlation_plots.png
	LogPath         string // optional copy of the text report
	DuplicatePolicy analysis.DuplicatePolicy
	CodeVersion     string
}

// ValidationResult contains the statistics and the files written
type ValidationResult struct {
	RunID     core.RunID
	Outcome   *analysis.Outcome
	Manifest  *run.RunManifest
	Artifacts []core.Artifact
}

// NewValidationService wires the service. out receives previews and the text report.
func NewValidationService(reader ports.TableReaderPort, renderer ports.FigureRendererPort, out io.Writer, logger *internal.Logger) *ValidationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ValidationService{
		reader:   reader,
		renderer: renderer,
		logger:   logger,
		out:      out,
	}
}

// Run executes the pipeline. Any error is terminal and nothing after the failing
// step is written.
func (s *ValidationService) Run(req ValidationRequest) (*ValidationResult, error) {
	runID := core.NewRunID()
	logger := s.logger.With("run_id", runID.String())
	if req.FigurePath == "" {
		req.FigurePath = filepath.Join(req.OutputDir, "correlation_plots.png")
	}

	// 1. Load computed results
	computed, err := s.load(req.ComputedPath, "Calculated", logger)
	if err != nil {
		return nil, err
	}

	// 2. Load reference values; their headers may carry stray whitespace
	reference, err := s.load(req.ReferencePath, "Reference", logger)
	if err != nil {
		return nil, err
	}
	reference.TrimColumnNames()

	// 3. Check schemas, normalize identifiers, join and correlate
	outcome, err := analysis.NewEngine(req.DuplicatePolicy, logger).JoinAndCorrelate(computed, reference)
	if err != nil {
		return nil, err
	}
	n := outcome.Merged.RowCount()
	fmt.Fprintf(s.out, "Successfully merged %d subjects.\n%s\n", n, strings.Repeat("-", 30))

	// 4. Text report to stdout; the log file copy waits until the figure and summary exist
	text, err := s.writeText(n, outcome.Results)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{RunID: runID, Outcome: outcome}

	// 5. Figure
	if err := fsutil.EnsureDir(req.OutputDir); err != nil {
		return nil, err
	}
	if err := fsutil.EnsureDir(filepath.Dir(req.FigurePath)); err != nil {
		return nil, err
	}
	logger.Info("generating plots")
	if err := s.renderer.Render(req.FigurePath, panels(outcome), caption(n, runID)); err != nil {
		return nil, err
	}
	result.Artifacts = append(result.Artifacts, core.Artifact{Kind: core.ArtifactFigure, Path: req.FigurePath})

	// 6. Markdown summary
	summaryPath := filepath.Join(req.OutputDir, report.SummaryFileName)
	err = report.WriteMarkdown(summaryPath, report.Summary{
		RunID:         runID,
		CreatedAt:     core.Now(),
		ComputedPath:  req.ComputedPath,
		ReferencePath: req.ReferencePath,
		Subjects:      n,
		Results:       outcome.Results,
		FigurePath:    req.FigurePath,
		Unmatched:     outcome.Join.UnmatchedLeft,
	})
	if err != nil {
		return nil, err
	}
	result.Artifacts = append(result.Artifacts, core.Artifact{Kind: core.ArtifactSummary, Path: summaryPath})

	// 7. Text log
	if req.LogPath != "" {
		if err := fsutil.EnsureDir(filepath.Dir(req.LogPath)); err != nil {
			return nil, err
		}
		if err := fsutil.WriteFileAtomic(req.LogPath, text); err != nil {
			return nil, err
		}
		result.Artifacts = append(result.Artifacts, core.Artifact{Kind: core.ArtifactTextLog, Path: req.LogPath})
	}

	// 8. Run manifest
	manifest, err := s.manifest(runID, req, computed, reference, outcome)
	if err != nil {
		return nil, err
	}
	manifestPath := filepath.Join(req.OutputDir, report.ManifestFileName)
	result.Artifacts = append(result.Artifacts, core.Artifact{Kind: core.ArtifactManifest, Path: manifestPath})
	for _, a := range result.Artifacts {
		manifest.AddArtifact(a.Kind, a.Path)
	}
	if err := report.WriteManifest(manifestPath, manifest); err != nil {
		return nil, err
	}
	result.Manifest = manifest

	logger.Info("validation complete: r_suvr=%.4f r_centiloid=%.4f", outcome.Results.SUVR.R, outcome.Results.Centiloid.R)
	return result, nil
}

func (s *ValidationService) load(path, label string, logger *internal.Logger) (*cohort.Table, error) {
	logger.Info("reading %s data from %s", strings.ToLower(label), path)
	table, err := s.reader.Read(path)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.out, "%s Data Preview:\n", label)
	report.Preview(s.out, table, PreviewRows)
	fmt.Fprintln(s.out, strings.Repeat("-", 30))
	return table, nil
}

// writeText prints the report to out and returns a copy for the log file
func (s *ValidationService) writeText(n int, results cohort.Results) ([]byte, error) {
	var logged bytes.Buffer
	w := io.MultiWriter(s.out, &logged)
	if err := report.WriteText(w, n, results); err != nil {
		return nil, apperrors.Wrap(err, "write report")
	}
	if err := report.WriteAgreement(w, results); err != nil {
		return nil, apperrors.Wrap(err, "write agreement table")
	}
	return logged.Bytes(), nil
}

func (s *ValidationService) manifest(runID core.RunID, req ValidationRequest, computed, reference *cohort.Table, outcome *analysis.Outcome) (*run.RunManifest, error) {
	computedHash, err := core.HashFile(req.ComputedPath)
	if err != nil {
		return nil, apperrors.Wrapf(err, "hash %s", req.ComputedPath)
	}
	referenceHash, err := core.HashFile(req.ReferencePath)
	if err != nil {
		return nil, apperrors.Wrapf(err, "hash %s", req.ReferencePath)
	}

	policy := req.DuplicatePolicy
	if policy == "" {
		policy = analysis.KeepFirst
	}
	m := run.NewRunManifest(
		runID,
		run.InputFile{Path: req.ComputedPath, Hash: computedHash, Rows: computed.RowCount()},
		run.InputFile{Path: req.ReferencePath, Hash: referenceHash, Rows: reference.RowCount()},
		outcome.SubjectIDs(),
		outcome.Results,
		string(policy),
		req.CodeVersion,
	)
	m.Unmatched = run.Unmatched{Computed: outcome.Join.UnmatchedLeft, Reference: outcome.Join.UnmatchedRight}
	m.Records = outcome.Records
	return m, nil
}

func panels(outcome *analysis.Outcome) []ports.ScatterPanel {
	out := make([]ports.ScatterPanel, 0, len(outcome.Series))
	for _, series := range outcome.Series {
		res, _ := outcome.Results.Get(series.Pair.Metric)
		out = append(out, ports.ScatterPanel{
			Pair:   series.Pair,
			X:      series.Computed,
			Y:      series.Reference,
			Result: res,
		})
	}
	return out
}

func caption(n int, runID core.RunID) string {
	short := runID.String()
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("n = %d matched subjects | run %s", n, short)
}
