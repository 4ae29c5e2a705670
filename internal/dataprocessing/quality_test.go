package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDataQuality(t *testing.T) {
	table := mustReadCSV(t, indicatorsCSV)

	tests := []struct {
		name        string
		threshold   float64
		wantFlagged []ColumnMissing
	}{
		{
			name:      "default threshold",
			threshold: 0.5,
			wantFlagged: []ColumnMissing{
				{Column: "rail_lines_km", MissingPct: 100},
			},
		},
		{
			name:      "low threshold",
			threshold: 0.1,
			wantFlagged: []ColumnMissing{
				{Column: "co2_emissions_per_capita", MissingPct: 20},
				{Column: "lpi_overall_score", MissingPct: 20},
				{Column: "rail_lines_km", MissingPct: 100},
			},
		},
		{
			name:      "fraction equal to threshold is not flagged",
			threshold: 0.2,
			wantFlagged: []ColumnMissing{
				{Column: "rail_lines_km", MissingPct: 100},
			},
		},
		{
			name:        "nothing above full threshold",
			threshold:   1.0,
			wantFlagged: []ColumnMissing{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ValidateDataQuality(table, tt.threshold)

			assert.Equal(t, 5, report.TotalRows)
			assert.Equal(t, 8, report.TotalColumns)
			assert.Equal(t, 7, report.TotalMissing)
			assert.InDelta(t, 17.5, report.MissingPct, 1e-9)
			assert.Equal(t, tt.wantFlagged, report.HighMissingColumns)
		})
	}
}

func TestValidateDataQuality_TotalRowsMatchesLength(t *testing.T) {
	for _, content := range []string{indicatorsCSV, "economy,year\nA,2020\n", "economy\n"} {
		table := mustReadCSV(t, content)
		assert.Equal(t, table.Len(), ValidateDataQuality(table, 0.5).TotalRows)
	}
}

func TestValidateDataQuality_EmptyTable(t *testing.T) {
	table, err := NewTable([]string{"economy", "year", "value"}, nil)
	require.NoError(t, err)

	report := ValidateDataQuality(table, 0)
	assert.Equal(t, 0, report.TotalRows)
	assert.Equal(t, 3, report.TotalColumns)
	assert.Equal(t, 0, report.TotalMissing)
	assert.Equal(t, 0.0, report.MissingPct)
	assert.Empty(t, report.HighMissingColumns)
}

func TestValidateDataQuality_RoundsColumnPercent(t *testing.T) {
	table := mustReadCSV(t, "economy,value\nA,\nB,1\nC,2\n")

	report := ValidateDataQuality(table, 0.3)
	require.Len(t, report.HighMissingColumns, 1)
	assert.Equal(t, 33.33, report.HighMissingColumns[0].MissingPct)
	assert.InDelta(t, 100.0/6, report.MissingPct, 1e-9)
}

func TestMissingCount(t *testing.T) {
	table := mustReadCSV(t, indicatorsCSV)
	assert.Equal(t, 5, MissingCount(table, "rail_lines_km"))
	assert.Equal(t, 0, MissingCount(table, ColumnEconomy))
	assert.Equal(t, 0, MissingCount(table, "unknown"))
}
