// Package dataprocessing loads and analyzes transport indicator tables
// keyed by economy and year.
//
// # Architecture
//
// Every operation works on a Table, a thin wrapper around a gota
// dataframe. Tables are treated as immutable: selections, filters and
// summaries return new tables and never modify their input.
//
//  1. Loading: ReadCSV, ReadExcel and LoadFile build tables from files
//  2. Selection: YearData, LatestYearData and FilterByIncomeGroup pick rows
//  3. Analysis: ValidateDataQuality, CalculateGrowthRate and SummarizeByRegion
//
// # Usage
//
//	table, err := dataprocessing.LoadFile("data/processed/transport_data_features.csv")
//	if err != nil {
//	    return err
//	}
//
//	latest, year, err := dataprocessing.LatestYearData(table)
//	summary, err := dataprocessing.SummarizeByRegion(latest, dataprocessing.DefaultRegionalMetrics)
//
// # Missing Values
//
// Empty cells and the usual NA markers (see MissingTokens) are read as
// missing. Missing values never take part in means or growth rates; an
// output cell that cannot be computed is itself missing.
//
// # Error Handling
//
// Errors are *errors.AppError values from internal/errors. A missing
// input file has type MISSING_FILE, an unknown column MISSING_COLUMN and
// unreadable content PARSING.
package dataprocessing
