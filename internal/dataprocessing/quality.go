package dataprocessing

// ColumnMissing is a column whose share of missing values exceeded the
// audit threshold
type ColumnMissing struct {
	Column     string  `json:"column"`
	MissingPct float64 `json:"missing_pct"`
}

// QualityReport summarizes missing data in a table
type QualityReport struct {
	TotalRows          int             `json:"total_rows"`
	TotalColumns       int             `json:"total_columns"`
	TotalMissing       int             `json:"total_missing"`
	MissingPct         float64         `json:"missing_pct"`
	HighMissingColumns []ColumnMissing `json:"high_missing_columns"`
}

// ValidateDataQuality audits missing cells. A column is flagged when its
// missing fraction is strictly greater than threshold (a fraction in
// [0, 1]); flagged percentages are rounded to two decimals. An empty table
// reports zero missing and flags nothing.
func ValidateDataQuality(t *Table, threshold float64) QualityReport {
	rows := t.Len()
	columns := t.Columns()

	report := QualityReport{
		TotalRows:          rows,
		TotalColumns:       len(columns),
		HighMissingColumns: []ColumnMissing{},
	}

	for _, name := range columns {
		missing := MissingCount(t, name)
		report.TotalMissing += missing

		if rows == 0 {
			continue
		}
		fraction := float64(missing) / float64(rows)
		if fraction > threshold {
			report.HighMissingColumns = append(report.HighMissingColumns, ColumnMissing{
				Column:     name,
				MissingPct: Round2(fraction * 100),
			})
		}
	}

	if cells := rows * len(columns); cells > 0 {
		report.MissingPct = float64(report.TotalMissing) / float64(cells) * 100
	}
	return report
}

// MissingCount returns how many cells of column are missing; zero for an
// unknown column.
func MissingCount(t *Table, column string) int {
	s, err := t.column(column)
	if err != nil {
		return 0
	}
	missing := 0
	for i := 0; i < s.Len(); i++ {
		if s.Elem(i).IsNA() {
			missing++
		}
	}
	return missing
}
