package dataprocessing

import (
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// regionAccumulator holds running sums for one region, one slot per metric
type regionAccumulator struct {
	sums   []float64
	counts []int
}

// SummarizeByRegion returns one row per region, sorted by region name,
// with the mean of each metric over that region's present values rounded
// to two decimals. Rows with no region are ignored; a region with no
// values for a metric gets a missing mean. Columns are region followed by
// metrics in the given order.
func SummarizeByRegion(t *Table, metrics []string) (*Table, error) {
	regions, err := t.column(ColumnRegion)
	if err != nil {
		return nil, err
	}

	metricCols := make([]series.Series, len(metrics))
	for j, m := range metrics {
		if metricCols[j], err = t.column(m); err != nil {
			return nil, err
		}
	}

	groups := make(map[string]*regionAccumulator)
	for i := 0; i < t.Len(); i++ {
		region, ok := keyAt(regions, i)
		if !ok {
			continue
		}

		acc, exists := groups[region]
		if !exists {
			acc = &regionAccumulator{
				sums:   make([]float64, len(metrics)),
				counts: make([]int, len(metrics)),
			}
			groups[region] = acc
		}

		for j, col := range metricCols {
			v, present, err := numericAt(col, i)
			if err != nil {
				return nil, err
			}
			if present {
				acc.sums[j] += v
				acc.counts[j]++
			}
		}
	}

	names := make([]string, 0, len(groups))
	for region := range groups {
		names = append(names, region)
	}
	sort.Strings(names)

	columns := make([]series.Series, 0, len(metrics)+1)
	columns = append(columns, series.New(names, series.String, ColumnRegion))
	for j, m := range metrics {
		means := make([]string, len(names))
		for k, region := range names {
			acc := groups[region]
			if acc.counts[j] == 0 {
				means[k] = naToken
				continue
			}
			means[k] = formatFloat(Round2(acc.sums[j] / float64(acc.counts[j])))
		}
		columns = append(columns, series.New(means, series.Float, m))
	}

	return FromDataFrame(dataframe.New(columns...))
}
