package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobilitycli/internal/dataprocessing"
	"mobilitycli/internal/services"
	"mobilitycli/internal/shared/testutil"
)

// setupWorkspace writes both datasets and a config file pointing at them
func setupWorkspace(t *testing.T) (*testutil.DatasetFixtures, string) {
	t.Helper()

	fixtures := testutil.NewDatasetFixtures(t)
	fixtures.WriteRaw(t, testutil.RawIndicatorsCSV)
	fixtures.WriteProcessed(t, testutil.ProcessedIndicatorsCSV)

	configPath := filepath.Join(fixtures.Dir, "config.yaml")
	testutil.WriteFile(t, configPath, fmt.Sprintf("paths:\n  base_dir: %q\nlogging:\n  level: debug\n", fixtures.Dir))
	return fixtures, configPath
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCommand(&stdout, &stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeRecords(t *testing.T, out string) []map[string]interface{} {
	t.Helper()
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	return records
}

func TestQualityCommand(t *testing.T) {
	_, configPath := setupWorkspace(t)

	t.Run("text", func(t *testing.T) {
		stdout, stderr, err := runCLI(t, "--config", configPath, "quality")
		require.NoError(t, err)

		assert.Contains(t, stdout, "Rows:          5")
		assert.Contains(t, stdout, "Missing cells: 7 (17.50%)")
		assert.Contains(t, stdout, "rail_lines_km")
		assert.Contains(t, stderr, "Data quality: 5 rows, 8 columns, 17.50% missing")
	})

	t.Run("json with threshold", func(t *testing.T) {
		stdout, _, err := runCLI(t, "--config", configPath, "-o", "json", "quality", "--threshold", "0.1")
		require.NoError(t, err)

		var report dataprocessing.QualityReport
		require.NoError(t, json.Unmarshal([]byte(stdout), &report))
		assert.Equal(t, 5, report.TotalRows)
		assert.Equal(t, 8, report.TotalColumns)
		assert.Len(t, report.HighMissingColumns, 3)
	})
}

func TestLatestCommand(t *testing.T) {
	fixtures, configPath := setupWorkspace(t)

	stdout, _, err := runCLI(t, "--config", configPath, "latest", "--out", "latest.csv")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Year 2020 (3 rows)")

	exported, err := dataprocessing.LoadFile(filepath.Join(fixtures.Paths.ReportsDir, "latest.csv"))
	require.NoError(t, err)
	assert.Equal(t, 3, exported.Len())

	stdout, _, err = runCLI(t, "--config", configPath, "-o", "json", "latest", "--year", "2019")
	require.NoError(t, err)
	records := decodeRecords(t, stdout)
	require.Len(t, records, 2)
	assert.Equal(t, float64(2019), records[0]["year"])
	assert.Equal(t, "DEU", records[0]["economy"])
	assert.Nil(t, records[0]["rail_lines_km"])
}

func TestFilterCommand(t *testing.T) {
	_, configPath := setupWorkspace(t)

	stdout, _, err := runCLI(t, "--config", configPath, "-o", "json", "filter",
		"--income-group", "High income", "--income-group", "Lower middle income")
	require.NoError(t, err)
	assert.Len(t, decodeRecords(t, stdout), 5)

	stdout, _, err = runCLI(t, "--config", configPath, "-o", "json", "filter", "--income-group", "Low income")
	require.NoError(t, err)
	assert.Empty(t, decodeRecords(t, stdout))

	_, _, err = runCLI(t, "--config", configPath, "filter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of --income-group or --region is required")
}

func TestFilterCommand_Region(t *testing.T) {
	_, configPath := setupWorkspace(t)

	tests := []struct {
		name    string
		args    []string
		wantLen int
	}{
		{
			name:    "region only",
			args:    []string{"--region", "Sub-Saharan Africa"},
			wantLen: 2,
		},
		{
			name:    "several regions",
			args:    []string{"--region", "Sub-Saharan Africa", "--region", "Europe & Central Asia"},
			wantLen: 5,
		},
		{
			name:    "income group and region",
			args:    []string{"--income-group", "High income", "--region", "Sub-Saharan Africa"},
			wantLen: 0,
		},
		{
			name:    "income group narrowed by region",
			args:    []string{"--income-group", "High income", "--region", "Europe & Central Asia"},
			wantLen: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", configPath, "-o", "json", "filter"}, tt.args...)
			stdout, _, err := runCLI(t, args...)
			require.NoError(t, err)
			assert.Len(t, decodeRecords(t, stdout), tt.wantLen)
		})
	}

	stdout, _, err := runCLI(t, "--config", configPath, "-o", "json", "filter", "--region", "Sub-Saharan Africa")
	require.NoError(t, err)
	for _, r := range decodeRecords(t, stdout) {
		assert.Equal(t, "KEN", r["economy"])
	}
}

func TestLatestCommand_Append(t *testing.T) {
	fixtures, configPath := setupWorkspace(t)

	_, _, err := runCLI(t, "--config", configPath, "latest", "--year", "2019", "--out", "history.csv", "--append")
	require.NoError(t, err)
	_, _, err = runCLI(t, "--config", configPath, "latest", "--out", "history.csv", "--append")
	require.NoError(t, err)

	history, err := dataprocessing.LoadFile(filepath.Join(fixtures.Paths.ReportsDir, "history.csv"))
	require.NoError(t, err)
	assert.Equal(t, 5, history.Len())

	years, err := dataprocessing.Years(history)
	require.NoError(t, err)
	assert.Equal(t, []int{2019, 2020}, years)

	_, _, err = runCLI(t, "--config", configPath, "latest", "--out", "history.xlsx", "--append")
	require.Error(t, err)
}

func TestGrowthCommand(t *testing.T) {
	_, configPath := setupWorkspace(t)

	stdout, _, err := runCLI(t, "--config", configPath, "-o", "json", "growth", "--column", "gdp_per_capita_ppp")
	require.NoError(t, err)

	records := decodeRecords(t, stdout)
	require.Len(t, records, 5)
	assert.Nil(t, records[0]["gdp_per_capita_ppp_growth"])
	assert.InDelta(t, 10.0, records[1]["gdp_per_capita_ppp_growth"], 1e-9)

	_, _, err = runCLI(t, "--config", configPath, "growth", "--column", "unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
}

func TestSummaryCommand(t *testing.T) {
	_, configPath := setupWorkspace(t)

	stdout, _, err := runCLI(t, "--config", configPath, "-o", "json", "--dataset", "processed",
		"summary", "--metric", "gdp_per_capita_ppp", "--year", "2020")
	require.NoError(t, err)

	records := decodeRecords(t, stdout)
	require.Len(t, records, 2)
	assert.Equal(t, "Europe & Central Asia", records[0]["region"])
	assert.Equal(t, 80.0, records[0]["gdp_per_capita_ppp"])
	assert.Equal(t, "Sub-Saharan Africa", records[1]["region"])
	assert.Equal(t, 11.0, records[1]["gdp_per_capita_ppp"])
}

func TestReportCommand(t *testing.T) {
	fixtures, configPath := setupWorkspace(t)

	t.Run("json", func(t *testing.T) {
		stdout, _, err := runCLI(t, "--config", configPath, "-o", "json", "report")
		require.NoError(t, err)

		var out struct {
			Quality         dataprocessing.QualityReport `json:"quality"`
			Year            int                          `json:"year"`
			YearRecords     int                          `json:"year_records"`
			Metrics         []string                     `json:"metrics"`
			RegionalSummary []map[string]interface{}     `json:"regional_summary"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))

		assert.Equal(t, 2020, out.Year)
		assert.Equal(t, 3, out.YearRecords)
		assert.Equal(t, dataprocessing.DefaultRegionalMetrics, out.Metrics)
		assert.Len(t, out.Quality.HighMissingColumns, 1)
		assert.Len(t, out.RegionalSummary, 2)
	})

	t.Run("text with export", func(t *testing.T) {
		stdout, _, err := runCLI(t, "--config", configPath, "report", "--out", "regional_summary.xlsx")
		require.NoError(t, err)

		assert.Contains(t, stdout, "Latest year: 2020 (3 records)")
		assert.Contains(t, stdout, "Regional summary (latest year) (2 rows)")
		assert.FileExists(t, filepath.Join(fixtures.Paths.ReportsDir, "regional_summary.xlsx"))
	})
}

func TestMissingDataset(t *testing.T) {
	fixtures, configPath := setupWorkspace(t)
	require.NoError(t, os.Remove(fixtures.Paths.RawDataCSV))

	_, stderr, err := runCLI(t, "--config", configPath, "quality")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrDatasetUnavailable)
	assert.Contains(t, stderr, "Raw data file not found")
}

func TestMetricsFile(t *testing.T) {
	_, configPath := setupWorkspace(t)
	metricsFile := filepath.Join(t.TempDir(), "mobility.prom")

	_, _, err := runCLI(t, "--config", configPath, "--metrics-file", metricsFile, "latest")
	require.NoError(t, err)

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "mobility_rows_loaded")
	assert.Contains(t, string(content), "mobility_operations")
	assert.Contains(t, string(content), "mobility_command_duration_seconds")
}

func TestInvalidFlags(t *testing.T) {
	_, configPath := setupWorkspace(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"output format", []string{"--config", configPath, "-o", "yaml", "quality"}, "unsupported output format"},
		{"dataset", []string{"--config", configPath, "--dataset", "archive", "quality"}, "unsupported dataset"},
		{"config file", []string{"--config", filepath.Join(t.TempDir(), "absent.yaml"), "quality"}, "absent.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), "got %v", err)
		})
	}
}

func TestDatasetsCommand(t *testing.T) {
	fixtures, configPath := setupWorkspace(t)
	testutil.WriteFile(t, filepath.Join(fixtures.Paths.ReportsDir, "summary.csv"), "region\n")

	stdout, _, err := runCLI(t, "--config", configPath, "datasets")
	require.NoError(t, err)
	assert.Contains(t, stdout, filepath.Join("raw", "world_bank_transport_data_raw.csv"))
	assert.Contains(t, stdout, filepath.Join("reports", "summary.csv"))
	assert.Contains(t, stdout, "raw        5 rows, 8 columns, years 2019-2020")
	assert.Contains(t, stdout, "processed  5 rows, 8 columns, years 2019-2020")

	stdout, _, err = runCLI(t, "--config", configPath, "-o", "json", "datasets")
	require.NoError(t, err)

	var listing struct {
		Files []struct {
			Path    string `json:"path"`
			Dataset string `json:"dataset"`
		} `json:"files"`
		Configured []struct {
			Dataset string `json:"dataset"`
			Path    string `json:"path"`
			Found   bool   `json:"found"`
			Rows    int    `json:"rows"`
			Columns int    `json:"columns"`
			Years   []int  `json:"years"`
		} `json:"configured"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &listing))
	require.Len(t, listing.Files, 3)

	byPath := make(map[string]string, len(listing.Files))
	for _, f := range listing.Files {
		byPath[f.Path] = f.Dataset
	}
	assert.Equal(t, "raw", byPath[fixtures.Paths.RawDataCSV])
	assert.Equal(t, "processed", byPath[fixtures.Paths.ProcessedDataCSV])

	require.Len(t, listing.Configured, 2)
	for i, want := range []struct {
		dataset string
		path    string
	}{
		{"raw", fixtures.Paths.RawDataCSV},
		{"processed", fixtures.Paths.ProcessedDataCSV},
	} {
		got := listing.Configured[i]
		assert.Equal(t, want.dataset, got.Dataset)
		assert.Equal(t, want.path, got.Path)
		assert.True(t, got.Found)
		assert.Equal(t, 5, got.Rows)
		assert.Equal(t, 8, got.Columns)
		assert.Equal(t, []int{2019, 2020}, got.Years)
	}
}

func TestDatasetsCommand_MissingDataDir(t *testing.T) {
	fixtures, configPath := setupWorkspace(t)
	require.NoError(t, os.RemoveAll(fixtures.Paths.DataDir))

	stdout, _, err := runCLI(t, "--config", configPath, "datasets")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No dataset files found")
	assert.Contains(t, stdout, "raw        not found")
	assert.Contains(t, stdout, "processed  not found")
}
