package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mobilitycli/internal/dataprocessing"
	"mobilitycli/internal/files"
	"mobilitycli/internal/services"
)

func addCommands(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "quality",
		Short: "Audit missing values in the dataset",
		Args:  cobra.NoArgs,
		RunE:  runAction(qualityCommand)}
	cmd.Flags().Float64("threshold", -1, "missing fraction above which a column is flagged (default: quality.threshold)")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "latest",
		Short: "Show the rows of the most recent year",
		Args:  cobra.NoArgs,
		RunE:  runAction(latestCommand)}
	cmd.Flags().Int("year", 0, "year to select instead of the latest")
	addOutputFlags(cmd, "write the rows to a CSV or XLSX file")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "filter",
		Short: "Keep rows in the given income groups and regions",
		Args:  cobra.NoArgs,
		RunE:  runAction(filterCommand)}
	cmd.Flags().StringArray("income-group", nil, "income group to keep (repeatable)")
	cmd.Flags().StringArray("region", nil, "region to keep (repeatable)")
	addOutputFlags(cmd, "write the rows to a CSV or XLSX file")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "growth",
		Short: "Add the year-over-year growth rate of a column",
		Args:  cobra.NoArgs,
		RunE:  runAction(growthCommand)}
	cmd.Flags().String("column", "", "numeric column to compute growth for")
	cmd.Flags().String("group-by", dataprocessing.ColumnEconomy, "column that partitions the rows")
	addOutputFlags(cmd, "write the table to a CSV or XLSX file")
	_ = cmd.MarkFlagRequired("column")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "summary",
		Short: "Average metrics by region",
		Args:  cobra.NoArgs,
		RunE:  runAction(summaryCommand)}
	cmd.Flags().StringArray("metric", dataprocessing.DefaultRegionalMetrics, "metric column to average (repeatable)")
	cmd.Flags().Int("year", 0, "restrict to one year (default: all years)")
	addOutputFlags(cmd, "write the summary to a CSV or XLSX file")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "datasets",
		Short: "List the dataset files under the data directory",
		Args:  cobra.NoArgs,
		RunE:  runAction(datasetsCommand)}
	root.AddCommand(cmd)

	defaults := services.DefaultReportOptions()
	cmd = &cobra.Command{
		Use:   "report",
		Short: "Quality audit and regional summary of the latest year",
		Args:  cobra.NoArgs,
		RunE:  runAction(reportCommand)}
	cmd.Flags().Float64("threshold", defaults.Threshold, "missing fraction above which a column is flagged")
	cmd.Flags().Int("year", 0, "year to summarize instead of the latest")
	cmd.Flags().StringArray("metric", defaults.Metrics, "metric column to average (repeatable)")
	addOutputFlags(cmd, "write the regional summary to a CSV or XLSX file")
	root.AddCommand(cmd)
}

// addOutputFlags adds --out and --append to a command producing a table
func addOutputFlags(cmd *cobra.Command, usage string) {
	cmd.Flags().String("out", "", usage)
	cmd.Flags().Bool("append", false, "append rows to an existing CSV --out file")
}

// runAction adapts a command body to cobra, handling setup and cleanup
func runAction(fn func(*Action) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		action, err := newAction(cmd)
		if err != nil {
			return err
		}
		runErr := fn(action)
		if runErr != nil {
			action.logger.ErrorContext(action.ctx, "Command failed", "error", runErr.Error())
		}
		if err := action.Close(); err != nil && runErr == nil {
			return err
		}
		return runErr
	}
}

func qualityCommand(a *Action) error {
	table, err := a.loadDataset()
	if err != nil {
		return err
	}

	report := a.service.ValidateDataQuality(a.ctx, table, a.getFloat("threshold"))
	if a.jsonOutput() {
		return a.showJSON(report)
	}
	showQuality(a, report)
	return nil
}

func showQuality(a *Action, report dataprocessing.QualityReport) {
	fmt.Fprintf(a.out, "Rows:          %d\n", report.TotalRows)
	fmt.Fprintf(a.out, "Columns:       %d\n", report.TotalColumns)
	fmt.Fprintf(a.out, "Missing cells: %d (%.2f%%)\n", report.TotalMissing, report.MissingPct)
	if len(report.HighMissingColumns) == 0 {
		fmt.Fprintln(a.out, "No columns above the missing-value threshold")
		return
	}
	fmt.Fprintln(a.out, "Columns above the missing-value threshold:")
	for _, col := range report.HighMissingColumns {
		fmt.Fprintf(a.out, "  %-40s %6.2f%%\n", col.Column, col.MissingPct)
	}
}

func latestCommand(a *Action) error {
	table, err := a.loadDataset()
	if err != nil {
		return err
	}

	selected, year, err := a.service.GetLatestYearData(a.ctx, table, a.getInt("year"))
	if err != nil {
		return err
	}
	if err := a.export(selected); err != nil {
		return err
	}
	return a.showTable(fmt.Sprintf("Year %d", year), selected)
}

func filterCommand(a *Action) error {
	groups := a.getStringArray("income-group")
	regions := a.getStringArray("region")
	if len(groups) == 0 && len(regions) == 0 {
		return fmt.Errorf("at least one of --income-group or --region is required")
	}

	table, err := a.loadDataset()
	if err != nil {
		return err
	}

	var title []string
	if len(groups) > 0 {
		if table, err = a.service.FilterByIncomeGroup(a.ctx, table, groups...); err != nil {
			return err
		}
		title = append(title, "Income groups: "+strings.Join(groups, ", "))
	}
	if len(regions) > 0 {
		if table, err = a.service.FilterByRegion(a.ctx, table, regions...); err != nil {
			return err
		}
		title = append(title, "Regions: "+strings.Join(regions, ", "))
	}

	if err := a.export(table); err != nil {
		return err
	}
	return a.showTable(strings.Join(title, "; "), table)
}

func growthCommand(a *Action) error {
	table, err := a.loadDataset()
	if err != nil {
		return err
	}

	column := a.getString("column")
	growth, err := a.service.CalculateGrowthRate(a.ctx, table, column, a.getString("group-by"))
	if err != nil {
		return err
	}
	withGrowth, err := table.WithColumn(growth)
	if err != nil {
		return err
	}
	if err := a.export(withGrowth); err != nil {
		return err
	}
	return a.showTable("Growth of "+column, withGrowth)
}

func summaryCommand(a *Action) error {
	table, err := a.loadDataset()
	if err != nil {
		return err
	}

	if year := a.getInt("year"); year != 0 {
		if table, _, err = a.service.GetLatestYearData(a.ctx, table, year); err != nil {
			return err
		}
	}

	summary, err := a.service.SummarizeByRegion(a.ctx, table, a.getStringArray("metric"))
	if err != nil {
		return err
	}
	if err := a.export(summary); err != nil {
		return err
	}
	return a.showTable("Regional summary", summary)
}

// reportJSON is the JSON shape of the report command
type reportJSON struct {
	*services.Report
	RegionalSummary []map[string]interface{} `json:"regional_summary"`
}

func reportCommand(a *Action) error {
	table, err := a.loadDataset()
	if err != nil {
		return err
	}

	report, err := a.service.BuildReport(a.ctx, table, services.ReportOptions{
		Threshold: a.getFloat("threshold"),
		Year:      a.getInt("year"),
		Metrics:   a.getStringArray("metric"),
	})
	if err != nil {
		return err
	}

	if report.RegionSummary != nil {
		if err := a.export(report.RegionSummary); err != nil {
			return err
		}
	}

	if a.jsonOutput() {
		out := reportJSON{Report: report, RegionalSummary: []map[string]interface{}{}}
		if report.RegionSummary != nil {
			out.RegionalSummary = tableRecords(report.RegionSummary)
		}
		return a.showJSON(out)
	}

	fmt.Fprintln(a.out, "Data quality")
	showQuality(a, report.Quality)
	fmt.Fprintf(a.out, "\nLatest year: %d (%d records)\n\n", report.Year, report.YearRecords)
	if report.RegionSummary == nil {
		fmt.Fprintln(a.out, "No region column, regional summary skipped")
		return nil
	}
	return a.showTable("Regional summary (latest year)", report.RegionSummary)
}

// datasetFile is a discovered file and the dataset it is configured as
type datasetFile struct {
	files.FileInfo
	Dataset string `json:"dataset,omitempty"`
}

// datasetStatus describes one configured dataset after loading it
type datasetStatus struct {
	Dataset string `json:"dataset"`
	Path    string `json:"path"`
	Found   bool   `json:"found"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Years   []int  `json:"years"`
}

// datasetsJSON is the JSON shape of the datasets command
type datasetsJSON struct {
	Files      []datasetFile   `json:"files"`
	Configured []datasetStatus `json:"configured"`
}

func datasetsCommand(a *Action) error {
	found, err := files.NewDiscovery(a.paths.BaseDir).FindDatasets(a.paths.DataDir)
	if err != nil {
		return err
	}

	configured := map[string]string{
		filepath.Clean(a.paths.RawDataCSV):       services.DatasetRaw,
		filepath.Clean(a.paths.ProcessedDataCSV): services.DatasetProcessed,
	}
	listing := make([]datasetFile, len(found))
	for i, f := range found {
		listing[i] = datasetFile{FileInfo: f, Dataset: configured[filepath.Clean(f.Path)]}
	}
	a.logger.InfoContext(a.ctx, fmt.Sprintf("Found %d dataset files", len(listing)),
		"directory", a.paths.DataDir)

	loaded, err := a.service.LoadAll(a.ctx)
	if err != nil {
		return err
	}
	raw, err := describeDataset(services.DatasetRaw, a.paths.RawDataCSV, loaded.Raw)
	if err != nil {
		return err
	}
	processed, err := describeDataset(services.DatasetProcessed, a.paths.ProcessedDataCSV, loaded.Processed)
	if err != nil {
		return err
	}
	statuses := []datasetStatus{raw, processed}

	if a.jsonOutput() {
		return a.showJSON(datasetsJSON{Files: listing, Configured: statuses})
	}

	fmt.Fprintf(a.out, "Datasets in %s\n", a.paths.DataDir)
	if len(listing) == 0 {
		fmt.Fprintln(a.out, "  No dataset files found")
	}
	for _, f := range listing {
		rel, err := filepath.Rel(a.paths.DataDir, f.Path)
		if err != nil {
			rel = f.Path
		}
		fmt.Fprintf(a.out, "  %-50s %-5s %10d  %s  %s\n",
			rel, f.Format, f.Size, f.ModTime.Format("2006-01-02 15:04"), f.Dataset)
	}

	fmt.Fprintln(a.out, "\nConfigured datasets")
	for _, st := range statuses {
		if !st.Found {
			fmt.Fprintf(a.out, "  %-10s not found (%s)\n", st.Dataset, st.Path)
			continue
		}
		fmt.Fprintf(a.out, "  %-10s %d rows, %d columns, %s\n", st.Dataset, st.Rows, st.Columns, yearSpan(st.Years))
	}
	return nil
}

// describeDataset summarizes a loaded table; nil means the file is missing
func describeDataset(dataset, path string, t *dataprocessing.Table) (datasetStatus, error) {
	status := datasetStatus{Dataset: dataset, Path: path, Years: []int{}}
	if t == nil {
		return status, nil
	}
	status.Found = true
	status.Rows = t.Len()
	status.Columns = len(t.Columns())
	if !t.HasColumn(dataprocessing.ColumnYear) {
		return status, nil
	}

	years, err := dataprocessing.Years(t)
	if err != nil {
		return status, fmt.Errorf("%s dataset: %w", dataset, err)
	}
	if years != nil {
		status.Years = years
	}
	return status, nil
}

func yearSpan(years []int) string {
	switch len(years) {
	case 0:
		return "no years"
	case 1:
		return fmt.Sprintf("year %d", years[0])
	}
	return fmt.Sprintf("years %d-%d", years[0], years[len(years)-1])
}
