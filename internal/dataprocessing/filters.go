package dataprocessing

// FilterByIncomeGroup keeps the rows whose income group is one of groups.
// Passing a single group or a slice of one group gives the same result.
func FilterByIncomeGroup(t *Table, groups ...string) (*Table, error) {
	return FilterByValues(t, ColumnIncomeGroup, groups...)
}

// FilterByRegion keeps the rows whose region is one of regions
func FilterByRegion(t *Table, regions ...string) (*Table, error) {
	return FilterByValues(t, ColumnRegion, regions...)
}

// FilterByValues keeps the rows whose column value is one of values, in
// their original order. Missing cells never match.
func FilterByValues(t *Table, column string, values ...string) (*Table, error) {
	s, err := t.column(column)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}

	var indexes []int
	for i := 0; i < s.Len(); i++ {
		key, ok := keyAt(s, i)
		if !ok {
			continue
		}
		if _, match := allowed[key]; match {
			indexes = append(indexes, i)
		}
	}
	return t.subset(indexes)
}
