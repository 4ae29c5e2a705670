package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/go-gota/gota/series"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"mobilitycli/internal/config"
	"mobilitycli/internal/dataprocessing"
	"mobilitycli/internal/exporter"
	"mobilitycli/internal/infrastructure"
	"mobilitycli/internal/services"
)

// Output formats for --output
const (
	outputText = "text"
	outputJSON = "json"
)

// textRowLimit caps table rows printed in text mode
const textRowLimit = 50

// Action is the state used while processing one command
type Action struct {
	cmd       *cobra.Command
	ctx       context.Context
	out       io.Writer
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	service   *services.IndicatorService
	writer    *exporter.CSVWriter
	providers *infrastructure.OTelProviders
	system    *infrastructure.SystemMetrics
	closers   []io.Closer
	start     time.Time
}

func newAction(cmd *cobra.Command) (*Action, error) {
	a := &Action{
		cmd:   cmd,
		ctx:   infrastructure.EnsureTraceID(cmd.Context()),
		out:   cmd.OutOrStdout(),
		start: time.Now(),
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	a.cfg = cfg

	if a.paths, err = cfg.ResolvePaths(); err != nil {
		return nil, err
	}

	if cfg.Logging.Output != "console" && cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = a.paths.GetLogPath(config.DefaultLogFile)
	}
	logger, closers, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger.With("command", cmd.Name())
	a.closers = closers
	a.paths.LogPathResolution(a.logger)

	opts, err := a.initTelemetry()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.service = services.NewIndicatorServiceWithLogger(cfg, a.paths, a.logger, opts...)
	a.writer = exporter.NewCSVWriter(a.paths, a.logger)
	return a, nil
}

func (a *Action) loadConfig() (*config.Config, error) {
	if path := a.getString("config"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// initTelemetry starts the configured exporters. --metrics-file turns on the
// Prometheus exporter even when telemetry is otherwise disabled.
func (a *Action) initTelemetry() ([]services.Option, error) {
	telemetry := a.cfg.Telemetry
	if file := a.getString("metrics-file"); file != "" {
		telemetry.Enabled = true
		telemetry.MetricExporter = "prometheus"
		telemetry.MetricsFile = file
	}
	a.cfg.Telemetry = telemetry
	if !telemetry.Enabled {
		return nil, nil
	}

	providers, err := infrastructure.InitializeOTel(telemetry, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	a.providers = providers

	metrics, err := infrastructure.CreateDatasetMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	if a.system, err = infrastructure.NewSystemMetrics(providers.Meter); err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}
	return []services.Option{
		services.WithTracer(providers.Tracer),
		services.WithMetrics(metrics),
	}, nil
}

// Close writes the metrics file, flushes telemetry and closes log files
func (a *Action) Close() error {
	var errs []string
	stats := infrastructure.ReadSystemStats(a.cmd.Name(), a.start)

	if a.providers != nil {
		a.system.Record(a.ctx, stats)
		if file := a.cfg.Telemetry.MetricsFile; file != "" {
			if err := a.providers.WriteMetricsFile(file); err != nil {
				errs = append(errs, fmt.Sprintf("metrics file: %v", err))
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.providers.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Sprintf("telemetry: %v", err))
		}
	}

	if a.logger != nil {
		a.logger.DebugContext(a.ctx, "Command finished", stats.LogAttrs())
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("log file: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (a *Action) getBool(name string) bool {
	result, _ := a.cmd.Flags().GetBool(name)
	return result
}

func (a *Action) getFloat(name string) float64 {
	result, _ := a.cmd.Flags().GetFloat64(name)
	return result
}

func (a *Action) getInt(name string) int {
	result, _ := a.cmd.Flags().GetInt(name)
	return result
}

func (a *Action) getString(name string) string {
	result, _ := a.cmd.Flags().GetString(name)
	return result
}

func (a *Action) getStringArray(name string) []string {
	result, _ := a.cmd.Flags().GetStringArray(name)
	return result
}

func (a *Action) jsonOutput() bool {
	return a.getString("output") == outputJSON
}

// loadDataset loads the dataset selected by --dataset
func (a *Action) loadDataset() (*dataprocessing.Table, error) {
	dataset := a.getString("dataset")
	table, err := a.service.Load(a.ctx, dataset)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, fmt.Errorf("%w: %s", services.ErrDatasetUnavailable, dataset)
	}
	return table, nil
}

// export writes t to --out when given, appending with --append
func (a *Action) export(t *dataprocessing.Table) error {
	out := a.getString("out")
	if out == "" {
		return nil
	}
	write := a.writer.WriteTable
	if a.getBool("append") {
		write = a.writer.AppendTable
	}
	path, err := write(out, t)
	if err != nil {
		return err
	}
	if !a.jsonOutput() {
		fmt.Fprintf(a.cmd.ErrOrStderr(), "Wrote %d rows to %s\n", t.Len(), path)
	}
	return nil
}

func (a *Action) showJSON(v interface{}) error {
	e := json.NewEncoder(a.out)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

// showTable prints t with a title in text mode, or as records in JSON mode
func (a *Action) showTable(title string, t *dataprocessing.Table) error {
	if a.jsonOutput() {
		return a.showJSON(tableRecords(t))
	}
	fmt.Fprintf(a.out, "%s (%d rows)\n", title, t.Len())
	return exporter.WriteText(a.out, t, textRowLimit)
}

// tableRecords converts t to one map per row. Missing and non-finite
// values are null.
func tableRecords(t *dataprocessing.Table) []map[string]interface{} {
	columns := t.Columns()
	cols := make(map[string]series.Series, len(columns))
	for _, name := range columns {
		if col, err := t.Column(name); err == nil {
			cols[name] = col
		}
	}

	records := make([]map[string]interface{}, t.Len())
	for row := range records {
		record := make(map[string]interface{}, len(columns))
		for _, name := range columns {
			record[name] = nil
			if t.IsMissing(row, name) {
				continue
			}
			record[name] = recordValue(t, cols[name], row, name)
		}
		records[row] = record
	}
	return records
}

func recordValue(t *dataprocessing.Table, col series.Series, row int, name string) interface{} {
	switch col.Type() {
	case series.Bool:
		if v, err := col.Elem(row).Bool(); err == nil {
			return v
		}
		return nil
	case series.Int, series.Float:
		if v, ok := t.Float(row, name); ok && !math.IsInf(v, 0) {
			return v
		}
		return nil
	}
	v, _ := t.String(row, name)
	return v
}
