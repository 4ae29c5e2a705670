package exporter

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"mobilitycli/internal/dataprocessing"
)

// Format is an output file format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"

	// DefaultSheetName names the worksheet of exported workbooks
	DefaultSheetName = "Indicators"

	// missingText is shown for missing cells in console output
	missingText = "-"
)

// FormatForPath picks the format from the file extension
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatExcel
	default:
		return FormatCSV
	}
}

// formatFloat formats a value for console output with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// WriteText renders t as aligned columns. Numbers other than years are
// shown with two decimals; missing cells as "-". At most limit rows are
// written when limit is positive.
func WriteText(w io.Writer, t *dataprocessing.Table, limit int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	columns := t.Columns()
	if _, err := fmt.Fprintln(tw, strings.Join(columns, "\t")); err != nil {
		return err
	}

	rows := t.Len()
	if limit > 0 && limit < rows {
		rows = limit
	}

	cells := make([]string, len(columns))
	for row := 0; row < rows; row++ {
		for i, name := range columns {
			cells[i] = textCell(t, row, name)
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}

	if rows < t.Len() {
		if _, err := fmt.Fprintf(tw, "... %d more rows\n", t.Len()-rows); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func textCell(t *dataprocessing.Table, row int, column string) string {
	s, ok := t.String(row, column)
	if !ok {
		return missingText
	}
	switch column {
	case dataprocessing.ColumnYear, dataprocessing.ColumnEconomy,
		dataprocessing.ColumnIncomeGroup, dataprocessing.ColumnRegion:
		return s
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return s
	}
	if v, ok := t.Float(row, column); ok {
		return formatFloat(v)
	}
	return s
}
