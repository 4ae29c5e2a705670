package services

import "errors"

var (
	// ErrDatasetUnavailable is returned by workflows that need a dataset the
	// loaders could not find
	ErrDatasetUnavailable = errors.New("dataset not available")

	// ErrNoYearData is returned when a table has no year values to select from
	ErrNoYearData = errors.New("no year data available")
)
