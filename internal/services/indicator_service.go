package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-gota/gota/series"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"mobilitycli/internal/config"
	"mobilitycli/internal/dataprocessing"
	"mobilitycli/internal/errors"
	"mobilitycli/internal/infrastructure"
	"mobilitycli/internal/validation"
)

// Dataset names used in logs and metrics
const (
	DatasetRaw       = "raw"
	DatasetProcessed = "processed"
)

// IndicatorService loads the indicator datasets and runs the table
// operations with logging, tracing and metrics.
type IndicatorService struct {
	paths     *config.Paths
	threshold float64
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *infrastructure.DatasetMetrics
	validator *validation.DatasetValidator
}

// Option configures an IndicatorService
type Option func(*IndicatorService)

// WithTracer sets the tracer used for operation spans
func WithTracer(tracer trace.Tracer) Option {
	return func(s *IndicatorService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics sets the instruments operations are recorded on
func WithMetrics(metrics *infrastructure.DatasetMetrics) Option {
	return func(s *IndicatorService) {
		s.metrics = metrics
	}
}

// NewIndicatorServiceWithLogger creates a service with a specific logger
func NewIndicatorServiceWithLogger(cfg *config.Config, paths *config.Paths, logger *slog.Logger, opts ...Option) *IndicatorService {
	s := &IndicatorService{
		paths:     paths,
		threshold: cfg.Quality.Threshold,
		logger:    infrastructure.WithComponent(logger, "indicator_service"),
		tracer:    otel.Tracer(infrastructure.MeterName),
	}
	s.validator = validation.NewDatasetValidator(s.logger)
	for _, opt := range opts {
		opt(s)
	}

	s.logger.Debug("IndicatorService initialized with paths",
		slog.String("raw_data", paths.RawDataCSV),
		slog.String("processed_data", paths.ProcessedDataCSV),
		slog.Float64("quality_threshold", s.threshold))

	return s
}

// Paths returns the resolved dataset locations
func (s *IndicatorService) Paths() *config.Paths {
	return s.paths
}

// DefaultThreshold returns the configured missing-value threshold
func (s *IndicatorService) DefaultThreshold() float64 {
	return s.threshold
}

// observe starts a span for op and returns a func that ends it, recording
// the outcome.
func (s *IndicatorService) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "IndicatorService."+op, trace.WithAttributes(attrs...))
	start := time.Now()

	return ctx, func(err error) {
		infrastructure.RecordError(ctx, err)
		s.metrics.RecordOperation(ctx, op, time.Since(start), err)
		span.End()
	}
}

// LoadRawData loads the raw dataset. A missing file is logged and yields
// a nil table with a nil error.
func (s *IndicatorService) LoadRawData(ctx context.Context) (*dataprocessing.Table, error) {
	return s.load(ctx, DatasetRaw, s.paths.RawDataCSV)
}

// LoadProcessedData loads the processed dataset. A missing file is logged
// and yields a nil table with a nil error.
func (s *IndicatorService) LoadProcessedData(ctx context.Context) (*dataprocessing.Table, error) {
	return s.load(ctx, DatasetProcessed, s.paths.ProcessedDataCSV)
}

// Load loads the named dataset
func (s *IndicatorService) Load(ctx context.Context, dataset string) (*dataprocessing.Table, error) {
	switch dataset {
	case DatasetRaw:
		return s.LoadRawData(ctx)
	case DatasetProcessed:
		return s.LoadProcessedData(ctx)
	default:
		return nil, errors.NewAppValidationError(fmt.Sprintf("unknown dataset %q", dataset)).
			WithContext("dataset", dataset)
	}
}

func (s *IndicatorService) load(ctx context.Context, dataset, path string) (table *dataprocessing.Table, err error) {
	ctx, done := s.observe(ctx, "load_"+dataset,
		attribute.String("dataset", dataset),
		attribute.String("path", path))
	defer func() { done(err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err = s.validator.ValidateDatasetFile(path)
	if err == nil {
		table, err = dataprocessing.LoadFile(path)
	}
	if err != nil {
		s.metrics.RecordLoad(ctx, dataset, 0, false)
		if errors.IsType(err, errors.ErrTypeMissingFile) {
			s.logger.ErrorContext(ctx, fmt.Sprintf("%s data file not found", titleCase(dataset)),
				slog.String("dataset", dataset),
				slog.String("path", path))
			return nil, nil
		}
		s.logger.ErrorContext(ctx, fmt.Sprintf("Failed to load %s data", dataset),
			slog.String("dataset", dataset),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("load %s data: %w", dataset, err)
	}

	s.validator.MissingColumns(table, validation.RequiredColumns...)
	s.metrics.RecordLoad(ctx, dataset, table.Len(), true)
	s.logger.InfoContext(ctx, fmt.Sprintf("%s data loaded: %d rows, %d columns",
		titleCase(dataset), table.Len(), len(table.Columns())),
		slog.String("dataset", dataset),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Columns())))
	return table, nil
}

// Datasets holds both indicator tables; either may be nil when its file
// is missing.
type Datasets struct {
	Raw       *dataprocessing.Table
	Processed *dataprocessing.Table
}

// LoadAll loads the raw and processed datasets concurrently
func (s *IndicatorService) LoadAll(ctx context.Context) (*Datasets, error) {
	var datasets Datasets
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		table, err := s.LoadRawData(gctx)
		datasets.Raw = table
		return err
	})
	g.Go(func() error {
		table, err := s.LoadProcessedData(gctx)
		datasets.Processed = table
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &datasets, nil
}

// GetLatestYearData returns the rows for year, or for the most recent year
// when year is 0, together with the year used.
func (s *IndicatorService) GetLatestYearData(ctx context.Context, t *dataprocessing.Table, year int) (selected *dataprocessing.Table, used int, err error) {
	ctx, done := s.observe(ctx, "latest_year_data", attribute.Int("year", year))
	defer func() { done(err) }()

	if year == 0 {
		selected, used, err = dataprocessing.LatestYearData(t)
	} else {
		used = year
		selected, err = dataprocessing.YearData(t, year)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to select year data", slog.String("error", err.Error()))
		return nil, 0, err
	}

	s.logger.InfoContext(ctx, fmt.Sprintf("Extracted %d records for year %d", selected.Len(), used),
		slog.Int("year", used),
		slog.Int("records", selected.Len()))
	return selected, used, nil
}

// ValidateDataQuality audits missing values; a negative threshold uses the
// configured default.
func (s *IndicatorService) ValidateDataQuality(ctx context.Context, t *dataprocessing.Table, threshold float64) dataprocessing.QualityReport {
	if threshold < 0 {
		threshold = s.threshold
	}
	ctx, done := s.observe(ctx, "validate_data_quality", attribute.Float64("threshold", threshold))
	defer done(nil)

	report := dataprocessing.ValidateDataQuality(t, threshold)
	s.metrics.RecordMissingCells(ctx, report.TotalMissing)

	s.logger.InfoContext(ctx, fmt.Sprintf("Data quality: %d rows, %d columns, %.2f%% missing",
		report.TotalRows, report.TotalColumns, report.MissingPct),
		slog.Int("total_rows", report.TotalRows),
		slog.Int("total_columns", report.TotalColumns),
		slog.Int("total_missing", report.TotalMissing),
		slog.Float64("missing_pct", report.MissingPct),
		slog.Int("high_missing_columns", len(report.HighMissingColumns)))

	for _, col := range report.HighMissingColumns {
		s.logger.WarnContext(ctx, "Column exceeds missing-value threshold",
			slog.String("column", col.Column),
			slog.Float64("missing_pct", col.MissingPct),
			slog.Float64("threshold_pct", threshold*100))
	}
	return report
}

// FilterByIncomeGroup keeps rows in any of groups
func (s *IndicatorService) FilterByIncomeGroup(ctx context.Context, t *dataprocessing.Table, groups ...string) (filtered *dataprocessing.Table, err error) {
	ctx, done := s.observe(ctx, "filter_by_income_group",
		attribute.StringSlice("income_groups", groups))
	defer func() { done(err) }()

	filtered, err = dataprocessing.FilterByIncomeGroup(t, groups...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to filter by income group", slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.InfoContext(ctx, fmt.Sprintf("Filtered to %d records for income groups: %s",
		filtered.Len(), strings.Join(groups, ", ")),
		slog.Int("records", filtered.Len()),
		slog.Any("income_groups", groups))
	return filtered, nil
}

// FilterByRegion keeps the rows in the given regions
func (s *IndicatorService) FilterByRegion(ctx context.Context, t *dataprocessing.Table, regions ...string) (filtered *dataprocessing.Table, err error) {
	ctx, done := s.observe(ctx, "filter_by_region",
		attribute.StringSlice("regions", regions))
	defer func() { done(err) }()

	filtered, err = dataprocessing.FilterByRegion(t, regions...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to filter by region", slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.InfoContext(ctx, fmt.Sprintf("Filtered to %d records for regions: %s",
		filtered.Len(), strings.Join(regions, ", ")),
		slog.Int("records", filtered.Len()),
		slog.Any("regions", regions))
	return filtered, nil
}

// CalculateGrowthRate returns the per-group percent change of column
func (s *IndicatorService) CalculateGrowthRate(ctx context.Context, t *dataprocessing.Table, column, groupBy string) (growth series.Series, err error) {
	ctx, done := s.observe(ctx, "calculate_growth_rate",
		attribute.String("column", column),
		attribute.String("group_by", groupBy))
	defer func() { done(err) }()

	growth, err = dataprocessing.CalculateGrowthRate(t, column, groupBy)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to calculate growth rate",
			slog.String("column", column),
			slog.String("error", err.Error()))
		return series.Series{}, err
	}

	present := growth.Len() - len(missingIndexes(growth))
	s.logger.InfoContext(ctx, fmt.Sprintf("Calculated growth rate for %s", column),
		slog.String("column", column),
		slog.String("series", growth.Name),
		slog.Int("values", present))
	return growth, nil
}

// SummarizeByRegion returns per-region means of metrics
func (s *IndicatorService) SummarizeByRegion(ctx context.Context, t *dataprocessing.Table, metrics []string) (summary *dataprocessing.Table, err error) {
	ctx, done := s.observe(ctx, "summarize_by_region",
		attribute.StringSlice("metrics", metrics))
	defer func() { done(err) }()

	summary, err = dataprocessing.SummarizeByRegion(t, metrics)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to summarize by region", slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.InfoContext(ctx, fmt.Sprintf("Created regional summary for %d regions", summary.Len()),
		slog.Int("regions", summary.Len()),
		slog.Any("metrics", metrics))
	return summary, nil
}

func missingIndexes(s series.Series) []int {
	var out []int
	for i := 0; i < s.Len(); i++ {
		if s.Elem(i).IsNA() {
			out = append(out, i)
		}
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
