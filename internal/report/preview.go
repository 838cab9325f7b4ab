package report

import (
	"fmt"
	"io"

	"centival/domain/cohort"

	"github.com/olekukonko/tablewriter"
)

// Preview renders the first n rows of a table as an ASCII grid
func Preview(w io.Writer, table *cohort.Table, n int) {
	if n > table.RowCount() {
		n = table.RowCount()
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader(table.ColumnNames())
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	for i := 0; i < n; i++ {
		tw.Append(table.Row(i))
	}
	tw.Render()

	if rest := table.RowCount() - n; rest > 0 {
		fmt.Fprintf(w, "... %d more rows\n", rest)
	}
}
