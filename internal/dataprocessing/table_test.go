package dataprocessing

import (
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobilitycli/internal/errors"
)

const indicatorsCSV = `economy,year,income_group,region,gdp_per_capita_ppp,co2_emissions_per_capita,lpi_overall_score,rail_lines_km
A,2019,High income,Europe,100,5,3.5,
A,2020,High income,Europe,110,5.5,,
B,2019,Low income,Africa,10,0.5,2.0,
B,2020,Low income,Africa,11,,2.2,
C,2020,Upper middle income,Europe,50,3,3.0,
`

func mustReadCSV(t *testing.T, content string) *Table {
	t.Helper()
	table, err := ReadCSV(strings.NewReader(content))
	require.NoError(t, err)
	return table
}

func economies(t *testing.T, table *Table) []string {
	t.Helper()
	out := make([]string, table.Len())
	for i := range out {
		out[i], _ = table.String(i, ColumnEconomy)
	}
	return out
}

func TestNewTable(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rows     [][]string
		wantLen  int
		wantCols []string
		wantErr  bool
	}{
		{
			name:     "rows and header",
			header:   []string{"economy", "year", "gdp"},
			rows:     [][]string{{"A", "2020", "1.5"}, {"B", "2020", ""}},
			wantLen:  2,
			wantCols: []string{"economy", "year", "gdp"},
		},
		{
			name:     "header only",
			header:   []string{"economy", "year"},
			wantLen:  0,
			wantCols: []string{"economy", "year"},
		},
		{
			name:     "nothing",
			wantLen:  0,
			wantCols: []string{},
		},
		{
			name:    "ragged row",
			header:  []string{"economy", "year"},
			rows:    [][]string{{"A"}},
			wantErr: true,
		},
		{
			name:    "rows without header",
			rows:    [][]string{{"A"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(tt.header, tt.rows)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrTypeParsing))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, table.Len())
			assert.Equal(t, tt.wantCols, table.Columns())
		})
	}
}

func TestTable_CellAccess(t *testing.T) {
	table := mustReadCSV(t, indicatorsCSV)

	v, ok := table.Float(0, "gdp_per_capita_ppp")
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)

	v, ok = table.Float(1, "co2_emissions_per_capita")
	assert.True(t, ok)
	assert.Equal(t, 5.5, v)

	_, ok = table.Float(1, "lpi_overall_score")
	assert.False(t, ok, "empty cell is missing")

	_, ok = table.Float(0, "no_such_column")
	assert.False(t, ok)

	s, ok := table.String(2, ColumnIncomeGroup)
	assert.True(t, ok)
	assert.Equal(t, "Low income", s)

	s, ok = table.String(0, ColumnYear)
	assert.True(t, ok)
	assert.Equal(t, "2019", s)

	assert.True(t, table.IsMissing(0, "rail_lines_km"))
	assert.False(t, table.IsMissing(0, ColumnEconomy))
	assert.True(t, table.IsMissing(99, ColumnEconomy))
}

func TestTable_CategoricalColumnsStayText(t *testing.T) {
	table := mustReadCSV(t, "economy,year,region\n1,2020,2\n2,2020,3\n")

	col, err := table.Column(ColumnRegion)
	require.NoError(t, err)
	assert.Equal(t, series.String, col.Type())

	col, err = table.Column(ColumnYear)
	require.NoError(t, err)
	assert.Equal(t, series.Int, col.Type())
}

func TestTable_Rows(t *testing.T) {
	table := mustReadCSV(t, "economy,year,value\nA,2020,1.25\nB,2021,\n")

	assert.Equal(t, [][]string{
		{"A", "2020", "1.25"},
		{"B", "2021", ""},
	}, table.Rows())
}

func TestTable_WithColumn(t *testing.T) {
	table := mustReadCSV(t, indicatorsCSV)

	added, err := table.WithColumn(series.New([]float64{1, 2, 3, 4, 5}, series.Float, "score"))
	require.NoError(t, err)
	assert.True(t, added.HasColumn("score"))
	assert.False(t, table.HasColumn("score"), "input table is unchanged")

	_, err = table.WithColumn(series.New([]float64{1}, series.Float, "short"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestTable_MissingColumn(t *testing.T) {
	table := mustReadCSV(t, indicatorsCSV)

	_, err := table.Column("nope")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeMissingColumn))
	assert.Contains(t, err.Error(), "nope")
}
