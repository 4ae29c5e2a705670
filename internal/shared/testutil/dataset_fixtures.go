package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"mobilitycli/internal/config"
)

// RawIndicatorsCSV is a small raw extract: two years for three economies
// with gaps in the sparse indicators.
const RawIndicatorsCSV = `economy,year,income_group,region,gdp_per_capita_ppp,co2_emissions_per_capita,lpi_overall_score,rail_lines_km
DEU,2019,High income,Europe & Central Asia,100,5,3.5,
DEU,2020,High income,Europe & Central Asia,110,5.5,,
KEN,2019,Lower middle income,Sub-Saharan Africa,10,0.5,2.0,
KEN,2020,Lower middle income,Sub-Saharan Africa,11,,2.2,
POL,2020,High income,Europe & Central Asia,50,3,3.0,
`

// ProcessedIndicatorsCSV is the feature table derived from RawIndicatorsCSV
const ProcessedIndicatorsCSV = `economy,year,income_group,region,gdp_per_capita_ppp,co2_emissions_per_capita,lpi_overall_score,gdp_per_capita_ppp_growth
DEU,2019,High income,Europe & Central Asia,100,5,3.5,
DEU,2020,High income,Europe & Central Asia,110,5.5,3.6,10
KEN,2019,Lower middle income,Sub-Saharan Africa,10,0.5,2.0,
KEN,2020,Lower middle income,Sub-Saharan Africa,11,0.6,2.2,10
POL,2020,High income,Europe & Central Asia,50,3,3.0,
`

// DatasetFixtures lays out a data directory for tests
type DatasetFixtures struct {
	Dir   string
	Paths *config.Paths
}

// NewDatasetFixtures creates an empty data layout under a temp directory.
// No dataset files are written until WriteRaw or WriteProcessed is called.
func NewDatasetFixtures(t *testing.T) *DatasetFixtures {
	t.Helper()

	dir := t.TempDir()
	paths := config.ResolvePaths(dir, config.Default().Paths)
	if err := paths.EnsureDirectories(); err != nil {
		t.Fatalf("failed to create fixture directories: %v", err)
	}
	return &DatasetFixtures{Dir: dir, Paths: paths}
}

// WriteRaw writes content as the raw dataset
func (f *DatasetFixtures) WriteRaw(t *testing.T, content string) string {
	t.Helper()
	return WriteFile(t, f.Paths.RawDataCSV, content)
}

// WriteProcessed writes content as the processed dataset
func (f *DatasetFixtures) WriteProcessed(t *testing.T, content string) string {
	t.Helper()
	return WriteFile(t, f.Paths.ProcessedDataCSV, content)
}

// WriteFile writes content to path, creating parent directories
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
