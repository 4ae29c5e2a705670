package dataprocessing

import (
	"math"

	"github.com/go-gota/gota/series"
)

// CalculateGrowthRate returns the percent change of column from the
// previous row of the same group, aligned with the table's rows and named
// "<column>_growth". groupBy defaults to economy.
//
// Rows are compared in table order, so callers sort by group and year
// first. The first row of each group, rows with a missing current or
// previous value and rows with a missing group key are missing. A zero
// previous value yields ±Inf, or missing when the current value is also
// zero.
func CalculateGrowthRate(t *Table, column, groupBy string) (series.Series, error) {
	if groupBy == "" {
		groupBy = ColumnEconomy
	}

	values, err := t.column(column)
	if err != nil {
		return series.Series{}, err
	}
	keys, err := t.column(groupBy)
	if err != nil {
		return series.Series{}, err
	}

	type observation struct {
		value   float64
		present bool
	}
	previous := make(map[string]observation)

	out := make([]string, t.Len())
	for i := range out {
		out[i] = naToken

		v, ok, err := numericAt(values, i)
		if err != nil {
			return series.Series{}, err
		}
		key, hasKey := keyAt(keys, i)
		if !hasKey {
			continue
		}

		prev, seen := previous[key]
		previous[key] = observation{value: v, present: ok}
		if !seen || !prev.present || !ok {
			continue
		}

		growth := (v - prev.value) / prev.value * 100
		if math.IsNaN(growth) {
			continue
		}
		out[i] = formatFloat(growth)
	}

	return series.New(out, series.Float, column+growthSuffix), nil
}

// WithGrowthRate returns t with the growth series of column appended
func WithGrowthRate(t *Table, column, groupBy string) (*Table, error) {
	growth, err := CalculateGrowthRate(t, column, groupBy)
	if err != nil {
		return nil, err
	}
	return t.WithColumn(growth)
}
