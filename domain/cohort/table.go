package cohort

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "centival/internal/errors"
)

// Column is a named, ordered sequence of raw cell values
type Column struct {
	Name   string
	Values []string
}

// Table is an ordered set of named columns sharing one row count.
// Cells stay as authored text; numeric coercion happens on extraction.
type Table struct {
	Source  string // file path or logical name used in diagnostics
	Columns []Column
}

// NewTable builds a column-oriented table from a header and row-major records.
// Every record must have exactly len(headers) cells.
func NewTable(source string, headers []string, records [][]string) (*Table, error) {
	seen := make(map[string]bool, len(headers))
	cols := make([]Column, len(headers))
	for i, h := range headers {
		if seen[h] {
			return nil, apperrors.ParseError(fmt.Sprintf("%s: duplicate column header %q", source, h), nil)
		}
		seen[h] = true
		cols[i] = Column{Name: h, Values: make([]string, 0, len(records))}
	}

	for r, rec := range records {
		if len(rec) != len(headers) {
			return nil, apperrors.ParseError(
				fmt.Sprintf("%s: data row %d has %d fields, header has %d", source, r+1, len(rec), len(headers)), nil)
		}
		for i, cell := range rec {
			cols[i].Values = append(cols[i].Values, cell)
		}
	}

	return &Table{Source: source, Columns: cols}, nil
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// ColumnNames returns the headers in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of a column, or -1
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column looks up a column by exact name
func (t *Table) Column(name string) (*Column, bool) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, false
	}
	return &t.Columns[idx], true
}

// HasColumn reports whether a column exists
func (t *Table) HasColumn(name string) bool {
	return t.Index(name) >= 0
}

// Row returns a copy of row i in column order
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.Columns))
	for c := range t.Columns {
		row[c] = t.Columns[c].Values[i]
	}
	return row
}

// TrimColumnNames strips surrounding whitespace from every header
func (t *Table) TrimColumnNames() {
	for i := range t.Columns {
		t.Columns[i].Name = strings.TrimSpace(t.Columns[i].Name)
	}
}

// RequireColumns fails with a schema error naming the first absent column
func (t *Table) RequireColumns(label string, names ...string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return apperrors.Wrapf(apperrors.SchemaError(label, name), "%s (%s)", "schema check failed", t.Source)
		}
	}
	return nil
}

// Float64s parses a column as finite floating point numbers.
// An empty or non-numeric cell is a parse error naming the row and, when keyColumn is set, its identifier.
func (t *Table) Float64s(name, keyColumn string) ([]float64, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, apperrors.SchemaError(t.Source, name)
	}
	var keys *Column
	if keyColumn != "" {
		keys, _ = t.Column(keyColumn)
	}

	out := make([]float64, len(col.Values))
	for i, raw := range col.Values {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
			err = fmt.Errorf("non-finite value")
		}
		if err != nil {
			where := fmt.Sprintf("row %d", i+1)
			if keys != nil {
				where = fmt.Sprintf("%s (%s %q)", where, keyColumn, keys.Values[i])
			}
			return nil, apperrors.ParseError(
				fmt.Sprintf("%s: column %q %s is not a number: %q", t.Source, name, where, raw), err)
		}
		out[i] = v
	}
	return out, nil
}
