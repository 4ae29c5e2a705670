// Package exporter writes indicator tables to files and terminals.
//
// CSVWriter is the file side: CSV output with a UTF-8 BOM for Excel
// compatibility, appends to an existing CSV with a matching header, and
// workbook output through excelize. Relative paths land in the reports
// directory.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths, logger)
//	path, err := writer.WriteTable("regional_summary.csv", summary)
//
// WriteText renders a table as aligned columns for console output.
package exporter
