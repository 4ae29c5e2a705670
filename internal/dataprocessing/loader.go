package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"mobilitycli/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadFile reads a table from path. Files ending in .xlsx or .xlsm are read
// as workbooks (first sheet), everything else as CSV. A missing file is a
// MISSING_FILE error.
func LoadFile(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewMissingFileError(path, err)
		}
		return nil, errors.NewStorageError("failed to stat data file", err).WithContext("path", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadExcel(path, "")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open data file", err).WithContext("path", path)
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return table, nil
}

// ReadCSV reads a comma-separated table with a header row. A leading UTF-8
// BOM is ignored and short rows are padded with missing cells.
func ReadCSV(r io.Reader) (*Table, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewStorageError("failed to read CSV", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to parse CSV", err)
	}
	if len(records) == 0 {
		return nil, errors.NewParsingError("no columns to parse", nil)
	}

	header := cleanHeader(records[0])
	rows, err := normalizeRows(records[1:], len(header))
	if err != nil {
		return nil, err
	}
	return NewTable(header, rows)
}

// ReadExcel reads the named sheet of a workbook, or the first sheet when
// sheet is empty. The first row is the header.
func ReadExcel(path, sheet string) (*Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NewMissingFileError(path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if index, err := f.GetSheetIndex(sheet); err != nil || index < 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("sheet %q", sheet)).
			WithContext("path", path).
			WithContext("sheets", strings.Join(f.GetSheetList(), ","))
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err).
			WithContext("path", path)
	}
	if len(rows) == 0 {
		return nil, errors.NewParsingError(fmt.Sprintf("sheet %q is empty", sheet), nil).
			WithContext("path", path)
	}

	header := cleanHeader(rows[0])
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// GetRows drops trailing empty cells, so an empty slice is a blank row
		if len(row) == 0 {
			continue
		}
		data = append(data, row)
	}
	data, err = normalizeRows(data, len(header))
	if err != nil {
		return nil, err
	}
	return NewTable(header, data)
}

// cleanHeader trims whitespace and zero-width characters from column names
func cleanHeader(header []string) []string {
	cleaned := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		name = strings.Trim(name, "\uFEFF\u200B\u200C\u200D")
		cleaned[i] = name
	}
	return cleaned
}

// normalizeRows pads short rows with empty cells and rejects long ones
func normalizeRows(rows [][]string, width int) ([][]string, error) {
	out := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > width {
			return nil, errors.NewParsingError(
				fmt.Sprintf("line %d: expected %d fields, saw %d", i+2, width, len(row)), nil)
		}
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		out[i] = row
	}
	return out, nil
}
