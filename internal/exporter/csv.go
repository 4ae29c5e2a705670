package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"mobilitycli/internal/config"
	"mobilitycli/internal/dataprocessing"
	"mobilitycli/internal/errors"
	"mobilitycli/internal/infrastructure"
	"mobilitycli/internal/validation"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides table export functionality
type CSVWriter struct {
	paths     *config.Paths
	logger    *slog.Logger
	validator *validation.DatasetValidator
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	logger = infrastructure.WithComponent(logger, "exporter")
	return &CSVWriter{
		paths:     paths,
		logger:    logger,
		validator: validation.NewDatasetValidator(logger),
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options and returns
// the resolved path.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (string, error) {
	fullPath := w.ResolvePath(filePath)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := w.validator.ValidateOutputDirectory(filepath.Dir(fullPath)); err != nil {
		return "", err
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return "", errors.NewStorageError("failed to open file", err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write(utf8BOM); err != nil {
			return "", errors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return "", errors.NewStorageError("failed to write headers", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return "", errors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", errors.NewStorageError("failed to flush CSV", err)
	}
	return fullPath, nil
}

// AppendToCSV appends records to an existing CSV file
func (w *CSVWriter) AppendToCSV(filePath string, records [][]string) (string, error) {
	return w.WriteCSV(filePath, WriteOptions{
		Records: records,
		Append:  true,
	})
}

// WriteTable writes t to filePath in the format implied by its extension:
// a workbook for .xlsx, CSV with a BOM otherwise.
func (w *CSVWriter) WriteTable(filePath string, t *dataprocessing.Table) (string, error) {
	if FormatForPath(filePath) == FormatExcel {
		return w.WriteExcel(filePath, DefaultSheetName, t)
	}
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   t.Columns(),
		Records:   t.Rows(),
		BOMPrefix: true,
	})
}

// AppendTable adds the rows of t to an existing CSV file, or writes the
// whole table when the file does not exist yet. The existing header must
// match t's columns. Workbooks cannot be appended to.
func (w *CSVWriter) AppendTable(filePath string, t *dataprocessing.Table) (string, error) {
	if FormatForPath(filePath) == FormatExcel {
		return "", errors.NewAppValidationError("append is only supported for CSV files").
			WithContext("path", filePath)
	}

	fullPath := w.ResolvePath(filePath)
	existing, err := dataprocessing.LoadFile(fullPath)
	if errors.IsType(err, errors.ErrTypeMissingFile) {
		return w.WriteTable(filePath, t)
	}
	if err != nil {
		return "", err
	}
	if !slices.Equal(existing.Columns(), t.Columns()) {
		return "", errors.NewAppValidationError(fmt.Sprintf("columns of %s do not match the table", fullPath)).
			WithContext("path", fullPath).
			WithContext("existing", strings.Join(existing.Columns(), ",")).
			WithContext("columns", strings.Join(t.Columns(), ","))
	}
	return w.AppendToCSV(filePath, t.Rows())
}

// WriteExcel writes t to the sheet of a new workbook. Numeric columns are
// written as numbers and missing cells are left blank.
func (w *CSVWriter) WriteExcel(filePath, sheet string, t *dataprocessing.Table) (string, error) {
	fullPath := w.ResolvePath(filePath)

	w.logger.Info("Writing workbook",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.String("sheet", sheet),
		slog.Int("record_count", t.Len()))

	if err := w.validator.ValidateOutputDirectory(filepath.Dir(fullPath)); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return "", errors.NewStorageError("failed to name sheet", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return "", errors.NewStorageError("failed to create sheet writer", err)
	}

	columns := t.Columns()
	header := make([]interface{}, len(columns))
	for i, name := range columns {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return "", errors.NewStorageError("failed to write header row", err)
	}

	for row := 0; row < t.Len(); row++ {
		values := make([]interface{}, len(columns))
		for i, name := range columns {
			values[i] = excelValue(t, row, name)
		}
		cell, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return "", errors.NewStorageError("invalid cell reference", err)
		}
		if err := sw.SetRow(cell, values); err != nil {
			return "", errors.NewStorageError(fmt.Sprintf("failed to write row %d", row), err)
		}
	}

	if err := sw.Flush(); err != nil {
		return "", errors.NewStorageError("failed to flush sheet", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return "", errors.NewStorageError("failed to save workbook", err)
	}
	return fullPath, nil
}

func excelValue(t *dataprocessing.Table, row int, column string) interface{} {
	if t.IsMissing(row, column) {
		return nil
	}
	switch column {
	case dataprocessing.ColumnEconomy, dataprocessing.ColumnIncomeGroup, dataprocessing.ColumnRegion:
		s, _ := t.String(row, column)
		return s
	}
	if v, ok := t.Float(row, column); ok {
		return v
	}
	s, _ := t.String(row, column)
	return s
}

// ResolvePath returns filePath unchanged when absolute, otherwise its
// location under the reports directory.
func (w *CSVWriter) ResolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return w.paths.GetReportPath(filePath)
}
