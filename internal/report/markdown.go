package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"centival/domain/cohort"
	"centival/domain/core"
	"centival/internal/fsutil"
)

// SummaryFileName is the markdown summary written into the output directory
const SummaryFileName = "correlation_summary.md"

// Summary is the input of the markdown summary
type Summary struct {
	RunID         core.RunID
	CreatedAt     core.Timestamp
	ComputedPath  string
	ReferencePath string
	Subjects      int
	Results       cohort.Results
	FigurePath    string // optional
	Unmatched     []string
}

// RenderMarkdown formats the summary as a markdown document
func RenderMarkdown(s Summary) (string, error) {
	var b strings.Builder
	b.WriteString("# Centiloid Validation Summary\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", s.RunID)
	if !s.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "- Date: %s\n", s.CreatedAt)
	}
	fmt.Fprintf(&b, "- Computed results: `%s`\n", s.ComputedPath)
	fmt.Fprintf(&b, "- Reference values: `%s`\n", s.ReferencePath)
	fmt.Fprintf(&b, "- Matched subjects: %d\n\n", s.Subjects)

	b.WriteString("| Metric | N | Pearson r | p-value | Slope | Intercept | Mean diff (ref - calc) | SD diff |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, pair := range cohort.MetricPairs {
		res, err := s.Results.Get(pair.Metric)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "| %s | %d | %.4f | %.4e | %.4f | %.4f | %+.4f | %.4f |\n",
			pair.Name, res.N, res.R, res.PValue, res.Slope, res.Intercept, res.MeanDifference, res.SDDifference)
	}

	for _, pair := range cohort.MetricPairs {
		res, _ := s.Results.Get(pair.Metric)
		if len(res.Outliers) > 0 {
			fmt.Fprintf(&b, "\n%s difference outliers (Tukey fences): %s\n", pair.Name, strings.Join(res.Outliers, ", "))
		}
	}

	if s.FigurePath != "" {
		fmt.Fprintf(&b, "\n![Correlation plots](%s)\n", filepath.ToSlash(filepath.Base(s.FigurePath)))
	}
	if len(s.Unmatched) > 0 {
		fmt.Fprintf(&b, "\n%d computed subjects had no reference values: %s\n",
			len(s.Unmatched), strings.Join(s.Unmatched, ", "))
	}
	return b.String(), nil
}

// WriteMarkdown renders the summary and writes it atomically to path
func WriteMarkdown(path string, s Summary) error {
	doc, err := RenderMarkdown(s)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, []byte(doc))
}
