package services

import (
	"context"
	"log/slog"

	"mobilitycli/internal/dataprocessing"
)

// ReportOptions controls BuildReport
type ReportOptions struct {
	Threshold float64
	Year      int
	Metrics   []string
}

// DefaultReportOptions audits at a 30% threshold and summarizes the
// default regional metrics for the latest year.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Threshold: 0.3,
		Metrics:   dataprocessing.DefaultRegionalMetrics,
	}
}

// Report is the combined quality audit and regional overview of a dataset
type Report struct {
	Quality       dataprocessing.QualityReport `json:"quality"`
	Year          int                          `json:"year"`
	YearRecords   int                          `json:"year_records"`
	Metrics       []string                     `json:"metrics"`
	RegionSummary *dataprocessing.Table        `json:"-"`
}

// BuildReport audits t, selects a year and summarizes the metrics present
// in t by region. Metrics missing from t are skipped with a warning.
func (s *IndicatorService) BuildReport(ctx context.Context, t *dataprocessing.Table, opts ReportOptions) (*Report, error) {
	if t == nil {
		return nil, ErrDatasetUnavailable
	}

	report := &Report{Quality: s.ValidateDataQuality(ctx, t, opts.Threshold)}

	selected, year, err := s.GetLatestYearData(ctx, t, opts.Year)
	if err != nil {
		return nil, err
	}
	if selected.Len() == 0 && opts.Year == 0 {
		return nil, ErrNoYearData
	}
	report.Year = year
	report.YearRecords = selected.Len()

	report.Metrics = make([]string, 0, len(opts.Metrics))
	for _, m := range opts.Metrics {
		if !t.HasColumn(m) {
			s.logger.WarnContext(ctx, "Skipping metric not present in dataset", slog.String("metric", m))
			continue
		}
		report.Metrics = append(report.Metrics, m)
	}

	if !selected.HasColumn(dataprocessing.ColumnRegion) {
		s.logger.WarnContext(ctx, "Dataset has no region column, skipping regional summary")
		return report, nil
	}

	report.RegionSummary, err = s.SummarizeByRegion(ctx, selected, report.Metrics)
	if err != nil {
		return nil, err
	}
	return report, nil
}
