// Package report formats validation results for people and for provenance.
package report

import (
	"fmt"
	"io"
	"strings"

	"centival/domain/cohort"

	"github.com/olekukonko/tablewriter"
)

const (
	textHeader = "=== STATISTICAL ANALYSIS RESULTS ==="
	textFooter = "===================================="
)

// WriteText prints the statistical summary block. r uses four decimals and p
// four-digit scientific notation.
func WriteText(w io.Writer, n int, results cohort.Results) error {
	ew := &errWriter{w: w}
	ew.printf("\n%s\n", textHeader)
	ew.printf("Number of Subjects: %d\n", n)
	for i, pair := range cohort.MetricPairs {
		res, err := results.Get(pair.Metric)
		if err != nil {
			return err
		}
		ew.printf("\n%d. %s:\n", i+1, pair.ReportHeading)
		ew.printf("   Pearson r: %.4f\n", res.R)
		ew.printf("   p-value:   %.4e\n", res.PValue)
	}
	ew.printf("%s\n\n", textFooter)
	return ew.err
}

// WriteAgreement prints regression and paired-difference statistics as a table
func WriteAgreement(w io.Writer, results cohort.Results) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "N", "Slope", "Intercept", "Mean calc", "Mean ref", "Mean diff", "SD diff", "Outliers"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, pair := range cohort.MetricPairs {
		res, err := results.Get(pair.Metric)
		if err != nil {
			return err
		}
		table.Append([]string{
			pair.Name,
			fmt.Sprintf("%d", res.N),
			fmt.Sprintf("%.4f", res.Slope),
			fmt.Sprintf("%.4f", res.Intercept),
			fmt.Sprintf("%.4f", res.MeanComputed),
			fmt.Sprintf("%.4f", res.MeanReference),
			fmt.Sprintf("%+.4f", res.MeanDifference),
			fmt.Sprintf("%.4f", res.SDDifference),
			outliers(res.Outliers),
		})
	}
	table.Render()
	return nil
}

func outliers(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, " ")
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
