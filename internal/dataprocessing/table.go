package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"mobilitycli/internal/errors"
)

// naToken is the literal gota parses as a missing element
const naToken = "NaN"

// Table is an immutable indicator table with named columns and one row
// per (economy, year) observation.
type Table struct {
	df dataframe.DataFrame
}

// NewTable builds a table from a header and string rows. Cells matching
// MissingTokens are missing; column types are detected from the values,
// except categorical columns which are always text.
func NewTable(header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		if len(rows) > 0 {
			return nil, errors.NewParsingError("rows given without a header", nil)
		}
		return &Table{}, nil
	}

	for i, row := range rows {
		if len(row) != len(header) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("row %d has %d fields, header has %d", i+1, len(row), len(header)), nil)
		}
	}

	if len(rows) == 0 {
		cols := make([]series.Series, len(header))
		for i, name := range header {
			cols[i] = series.New([]string{}, emptyColumnType(name), name)
		}
		return FromDataFrame(dataframe.New(cols...))
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, append([]string(nil), header...))
	for _, row := range rows {
		records = append(records, append([]string(nil), row...))
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(MissingTokens),
		dataframe.WithTypes(columnTypes(header)),
	)
	return FromDataFrame(df)
}

// FromDataFrame wraps an existing dataframe
func FromDataFrame(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, errors.NewParsingError("invalid dataframe", df.Err)
	}
	return &Table{df: df}, nil
}

func columnTypes(header []string) map[string]series.Type {
	types := make(map[string]series.Type)
	for _, name := range header {
		for _, c := range categoricalColumns {
			if name == c {
				types[name] = series.String
			}
		}
	}
	return types
}

func emptyColumnType(name string) series.Type {
	if _, ok := columnTypes([]string{name})[name]; ok {
		return series.String
	}
	if name == ColumnYear {
		return series.Int
	}
	return series.Float
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.df.Nrow()
}

// Columns returns the column names in order
func (t *Table) Columns() []string {
	if t.df.Ncol() == 0 {
		return []string{}
	}
	return t.df.Names()
}

// HasColumn reports whether the table has a column called name
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns() {
		if c == name {
			return true
		}
	}
	return false
}

// DataFrame returns a copy of the underlying dataframe
func (t *Table) DataFrame() dataframe.DataFrame {
	return t.df.Copy()
}

// Column returns a copy of the named column
func (t *Table) Column(name string) (series.Series, error) {
	s, err := t.column(name)
	if err != nil {
		return series.Series{}, err
	}
	return s.Copy(), nil
}

func (t *Table) column(name string) (series.Series, error) {
	if !t.HasColumn(name) {
		return series.Series{}, errors.NewMissingColumnError(name)
	}
	return t.df.Col(name), nil
}

// IsMissing reports whether the cell is missing. Unknown columns count as missing.
func (t *Table) IsMissing(row int, col string) bool {
	if !t.HasColumn(col) || row < 0 || row >= t.Len() {
		return true
	}
	return t.df.Col(col).Elem(row).IsNA()
}

// Float returns the numeric value of a cell; ok is false when the cell is
// missing or not a number.
func (t *Table) Float(row int, col string) (float64, bool) {
	if t.IsMissing(row, col) {
		return 0, false
	}
	v, ok, err := numericAt(t.df.Col(col), row)
	if err != nil {
		return 0, false
	}
	return v, ok
}

// String returns the text of a cell; ok is false when the cell is missing.
func (t *Table) String(row int, col string) (string, bool) {
	if t.IsMissing(row, col) {
		return "", false
	}
	return formatElement(t.df.Col(col).Elem(row)), true
}

// Rows returns every row as strings, with missing cells empty
func (t *Table) Rows() [][]string {
	cols := t.Columns()
	rows := make([][]string, t.Len())
	for i := range rows {
		row := make([]string, len(cols))
		for j, name := range cols {
			e := t.df.Col(name).Elem(i)
			if !e.IsNA() {
				row[j] = formatElement(e)
			}
		}
		rows[i] = row
	}
	return rows
}

// WithColumn returns a new table with s added, replacing any column of
// the same name.
func (t *Table) WithColumn(s series.Series) (*Table, error) {
	if s.Len() != t.Len() {
		return nil, errors.NewAppValidationError(
			fmt.Sprintf("column %q has %d values, table has %d rows", s.Name, s.Len(), t.Len()))
	}
	if t.df.Ncol() == 0 {
		return FromDataFrame(dataframe.New(s.Copy()))
	}
	return FromDataFrame(t.df.Mutate(s.Copy()))
}

// subset returns the rows at indexes, in order. An empty selection keeps
// the column names and types.
func (t *Table) subset(indexes []int) (*Table, error) {
	if len(indexes) == 0 {
		return t.emptyLike(), nil
	}
	return FromDataFrame(t.df.Subset(indexes))
}

func (t *Table) emptyLike() *Table {
	if t.df.Ncol() == 0 {
		return &Table{}
	}
	names := t.df.Names()
	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i] = series.New([]string{}, t.df.Col(name).Type(), name)
	}
	return &Table{df: dataframe.New(cols...)}
}

// numericAt reads element i of s as a number. ok is false for missing
// and NaN values; text that is not a number is a validation error.
func numericAt(s series.Series, i int) (float64, bool, error) {
	e := s.Elem(i)
	if e.IsNA() {
		return 0, false, nil
	}
	if s.Type() == series.String {
		raw := strings.TrimSpace(e.String())
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false, errors.NewAppValidationError(
				fmt.Sprintf("column %q holds non-numeric value %q", s.Name, raw)).
				WithContext("column", s.Name)
		}
		return v, !math.IsNaN(v), nil
	}
	v := e.Float()
	return v, !math.IsNaN(v), nil
}

// keyAt reads element i of s as a grouping key
func keyAt(s series.Series, i int) (string, bool) {
	e := s.Elem(i)
	if e.IsNA() {
		return "", false
	}
	return formatElement(e), true
}

func formatElement(e series.Element) string {
	if e.Type() == series.Float {
		return strconv.FormatFloat(e.Float(), 'f', -1, 64)
	}
	return e.String()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return naToken
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
