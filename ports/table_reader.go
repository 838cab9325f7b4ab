package ports

import (
	"centival/domain/cohort"
)

// TableReaderPort loads one tabular input into memory
type TableReaderPort interface {
	// Read loads the file at path. Missing files, unparseable content and
	// header-only files are reported as errors, never as an empty table.
	Read(path string) (*cohort.Table, error)
}

// TableReaderFunc adapts a function to TableReaderPort
type TableReaderFunc func(path string) (*cohort.Table, error)

func (f TableReaderFunc) Read(path string) (*cohort.Table, error) { return f(path) }
