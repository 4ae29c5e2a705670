package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/series"

	"mobilitycli/internal/errors"
)

// YearData returns the rows whose year equals year, in their original order.
func YearData(t *Table, year int) (*Table, error) {
	years, err := t.column(ColumnYear)
	if err != nil {
		return nil, err
	}

	var indexes []int
	for i := 0; i < years.Len(); i++ {
		v, ok, err := yearAt(years, i)
		if err != nil {
			return nil, err
		}
		if ok && v == year {
			indexes = append(indexes, i)
		}
	}
	return t.subset(indexes)
}

// LatestYear returns the largest year present. ok is false when the table
// has no year values.
func LatestYear(t *Table) (year int, ok bool, err error) {
	years, err := t.column(ColumnYear)
	if err != nil {
		return 0, false, err
	}

	for i := 0; i < years.Len(); i++ {
		v, present, err := yearAt(years, i)
		if err != nil {
			return 0, false, err
		}
		if present && (!ok || v > year) {
			year, ok = v, true
		}
	}
	return year, ok, nil
}

// LatestYearData returns the rows of the most recent year together with
// that year. A table without year values gives an empty table and year 0.
func LatestYearData(t *Table) (*Table, int, error) {
	year, ok, err := LatestYear(t)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return t.emptyLike(), 0, nil
	}

	selected, err := YearData(t, year)
	if err != nil {
		return nil, 0, err
	}
	return selected, year, nil
}

// Years returns the distinct years present, ascending
func Years(t *Table) ([]int, error) {
	years, err := t.column(ColumnYear)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	var out []int
	for i := 0; i < years.Len(); i++ {
		y, ok, err := yearAt(years, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if _, dup := seen[y]; !dup {
			seen[y] = struct{}{}
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out, nil
}

// yearAt reads row i of the year column. Years must be whole numbers.
func yearAt(years series.Series, i int) (int, bool, error) {
	v, ok, err := numericAt(years, i)
	if err != nil || !ok {
		return 0, ok, err
	}
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, false, errors.NewAppValidationError(fmt.Sprintf("year %v in row %d is not a whole number", v, i)).
			WithContext("column", ColumnYear).
			WithContext("row", i)
	}
	return int(v), true, nil
}
