// Package shared holds code used across packages that belongs to no single
// domain layer.
//
// The testutil subpackage provides:
//
//   - dataset fixtures that lay out a data directory with raw and processed
//     indicator files
//   - a buffered slog handler with assertions on captured records
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    fixtures := testutil.NewDatasetFixtures(t)
//	    fixtures.WriteRaw(t, testutil.RawIndicatorsCSV)
//	    logger, handler := testutil.NewTestLogger(t)
//	    ...
//	}
//
// Nothing here may import a domain package.
package shared
