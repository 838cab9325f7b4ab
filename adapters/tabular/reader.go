package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"centival/domain/cohort"
	"centival/internal"
	apperrors "centival/internal/errors"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// DataReader reads delimited text and Excel workbooks into a cohort.Table
type DataReader struct {
	logger *internal.Logger
}

// NewDataReader creates a reader that logs through logger (nil uses the default logger)
func NewDataReader(logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{logger: logger}
}

// FileType classifies a path by extension: "xlsx", "tsv" or "csv"
func FileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return "xlsx"
	case ".tsv", ".tab":
		return "tsv"
	default:
		return "csv"
	}
}

// Read loads the table at path
func (r *DataReader) Read(path string) (*cohort.Table, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, apperrors.MissingInput(path)
	}
	if err != nil {
		return nil, apperrors.ParseError(fmt.Sprintf("cannot stat %s", path), err)
	}
	if info.IsDir() {
		return nil, apperrors.ParseError(fmt.Sprintf("%s is a directory, not a table", path), nil)
	}

	start := time.Now()
	fileType := FileType(path)
	var records [][]string
	switch fileType {
	case "xlsx":
		records, err = readWorkbook(path)
	default:
		records, err = readDelimited(path, fileType)
	}
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return nil, apperrors.ParseError(fmt.Sprintf("%s has no data rows (a header row and at least one data row are required)", path), nil)
	}

	headers := records[0]
	headers[0] = strings.TrimPrefix(headers[0], utf8BOM)

	table, err := cohort.NewTable(path, headers, records[1:])
	if err != nil {
		return nil, err
	}

	r.logger.Debug("read %s file %s in %.2fms (%d columns, %d rows)",
		fileType, path, float64(time.Since(start).Nanoseconds())/1e6, len(headers), table.RowCount())
	return table, nil
}

// readDelimited parses comma, semicolon or tab separated text
func readDelimited(path, fileType string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ParseError(fmt.Sprintf("cannot read %s", path), err)
	}
	if !utf8.Valid(data) {
		return nil, apperrors.ParseError(fmt.Sprintf("%s is not valid UTF-8 text", path), nil)
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.ParseError(fmt.Sprintf("%s is empty", path), nil)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	if fileType == "tsv" {
		reader.Comma = '\t'
	} else {
		reader.Comma = SniffDelimiter(data)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.ParseError(fmt.Sprintf("malformed delimited text in %s", path), err)
	}
	return records, nil
}

// SniffDelimiter picks the most frequent of ',', ';' and '\t' on the header line.
// Comma wins ties, including the no-delimiter single-column case.
func SniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, cand := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(cand))); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}

// readWorkbook reads the first sheet of an Excel workbook
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.ParseError(fmt.Sprintf("failed to open Excel file %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.ParseError(fmt.Sprintf("%s contains no worksheets", path), nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.ParseError(fmt.Sprintf("failed to read sheet %q of %s", sheets[0], path), err)
	}

	// GetRows drops trailing empty cells; pad back to header width and skip blank rows.
	var records [][]string
	width := 0
	for i, row := range rows {
		if i == 0 {
			width = len(row)
		}
		if isBlank(row) {
			continue
		}
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		records = append(records, row)
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
