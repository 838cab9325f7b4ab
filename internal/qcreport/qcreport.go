package qcreport

import (
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"centival/domain/core"
	"centival/internal"
	apperrors "centival/internal/errors"
	"centival/internal/fsutil"
	"centival/internal/report"

	"github.com/gomarkdown/markdown"
)

// IndexFileName is the report written into the QC directory
const IndexFileName = "index.html"

// Panel is one per-subject QC image
type Panel struct {
	File    string
	Label   string
	Alt     string
	Present bool
}

// Src is the image path relative to the report
func (p Panel) Src(subject string) string {
	return subject + "/" + p.File
}

var panelSpecs = []Panel{
	{File: "qc_coreg.png", Label: "Coregistration", Alt: "Coregistration"},
	{File: "qc_norm.png", Label: "Normalization", Alt: "Normalization"},
	{File: "qc_masks.png", Label: "Mask Alignment", Alt: "Mask Alignment"},
}

// Subject lists the QC panels of one sub-* directory
type Subject struct {
	ID     string
	Panels []Panel
}

// Complete reports whether every panel image exists
func (s Subject) Complete() bool {
	for _, p := range s.Panels {
		if !p.Present {
			return false
		}
	}
	return true
}

// Result describes a generated report
type Result struct {
	Output   string
	Subjects []Subject
	Summary  bool // validation summary embedded
}

// Options locate the inputs of the report
type Options struct {
	QCDir      string
	ResultsDir string // where the validation summary lives; optional
	Now        time.Time
}

// Generate scans QCDir for sub-* directories and writes index.html next to them.
// With no subjects nothing is written and the result has zero subjects.
func Generate(opts Options, logger *internal.Logger) (*Result, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	subjects, err := ScanSubjects(opts.QCDir)
	if err != nil {
		return nil, err
	}
	res := &Result{Subjects: subjects}
	if len(subjects) == 0 {
		logger.Warn("no subject QC folders found in %s", opts.QCDir)
		return res, nil
	}

	page := pageData{
		Generated: core.NewTimestamp(opts.Now).String(),
		Subjects:  subjects,
	}
	if opts.ResultsDir != "" {
		summary, ok, err := loadSummary(filepath.Join(opts.ResultsDir, report.SummaryFileName))
		if err != nil {
			return nil, err
		}
		if ok {
			page.Summary = summary
			res.Summary = true
		}
	}

	res.Output = filepath.Join(opts.QCDir, IndexFileName)
	err = fsutil.WriteAtomic(res.Output, func(w io.Writer) error {
		return pageTemplate.Execute(w, page)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("QC report for %d subjects written to %s", len(subjects), res.Output)
	return res, nil
}

// ScanSubjects lists sub-* directories of qcDir in name order
func ScanSubjects(qcDir string) ([]Subject, error) {
	entries, err := os.ReadDir(qcDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.MissingInput(qcDir)
		}
		return nil, apperrors.Wrapf(err, "read QC directory %s", qcDir)
	}

	var subjects []Subject
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "sub-") {
			continue
		}
		s := Subject{ID: e.Name()}
		for _, spec := range panelSpecs {
			p := spec
			p.Present = fsutil.Exists(filepath.Join(qcDir, e.Name(), p.File))
			s.Panels = append(s.Panels, p)
		}
		subjects = append(subjects, s)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	return subjects, nil
}

// loadSummary converts the markdown validation summary to HTML
func loadSummary(path string) (template.HTML, bool, error) {
	md, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, apperrors.Wrapf(err, "read %s", path)
	}
	html := markdown.ToHTML(md, nil, nil)
	return template.HTML(html), true, nil
}

type pageData struct {
	Generated string
	Subjects  []Subject
	Summary   template.HTML
}

var pageTemplate = template.Must(template.New("qc").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>PET-NeuroProject QC Report</title>
    <style>
        body { font-family: sans-serif; margin: 20px; }
        h1 { color: #333; }
        .subject-container { border-bottom: 2px solid #ccc; padding: 20px 0; }
        .subject-header { font-size: 1.5em; font-weight: bold; margin-bottom: 10px; }
        .images-row { display: flex; gap: 10px; overflow-x: auto; }
        .image-box { flex: 1; min-width: 300px; }
        img { width: 100%; border: 1px solid #ddd; border-radius: 5px; }
        .label { text-align: center; font-weight: bold; margin-top: 5px; color: #555; }
        .missing { height: 200px; background: #f0f0f0; display: flex; align-items: center; justify-content: center; }
        .status { margin-left: 10px; font-size: 0.8em; }
        .status.pass { color: green; }
        .status.fail { color: red; }
        .summary table { border-collapse: collapse; }
        .summary td, .summary th { border: 1px solid #ccc; padding: 4px 8px; }
    </style>
</head>
<body>
    <h1>PET-NeuroProject Quality Control Report</h1>
    <p>Generated on: {{.Generated}}</p>
    <p>Total Subjects: {{len .Subjects}}</p>
{{- if .Summary}}
    <div class="summary">
{{.Summary}}
    </div>
{{- end}}
{{- range $s := .Subjects}}
    <div class="subject-container">
        <div class="subject-header">
            {{$s.ID}}
            {{- if $s.Complete}} <span class="status pass">complete</span>{{else}} <span class="status fail">incomplete</span>{{end}}
        </div>
        <div class="images-row">
        {{- range $p := $s.Panels}}
            <div class="image-box">
            {{- if $p.Present}}
                <img src="{{$p.Src $s.ID}}" alt="{{$p.Alt}}"><div class="label">{{$p.Label}}</div>
            {{- else}}
                <div class="missing">Missing</div>
            {{- end}}
            </div>
        {{- end}}
        </div>
    </div>
{{- end}}
</body>
</html>
`))
