package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// Relative locations from PathsConfig are resolved against BaseDir once, here.
type Paths struct {
	BaseDir      string
	DataDir      string
	RawDir       string
	ProcessedDir string
	ReportsDir   string
	LogsDir      string

	// Well-known dataset files
	RawDataCSV       string
	ProcessedDataCSV string
}

// ExecutableDir returns the directory containing the running binary with symlinks resolved
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return filepath.Dir(exe), nil
}

// ResolvePaths builds the path set for baseDir.
// Directory layout:
//
//	<base>/
//	  ├── data/
//	  │   ├── raw/         world_bank_transport_data_raw.csv
//	  │   ├── processed/   transport_data_features.csv
//	  │   └── reports/     CLI exports
//	  └── logs/
func ResolvePaths(baseDir string, cfg PathsConfig) *Paths {
	if cfg.BaseDir != "" {
		baseDir = cfg.BaseDir
	}

	dataDir := under(baseDir, cfg.DataDir)
	rawFile := under(dataDir, cfg.RawFile)
	processedFile := under(dataDir, cfg.ProcessedFile)

	return &Paths{
		BaseDir:          baseDir,
		DataDir:          dataDir,
		RawDir:           filepath.Dir(rawFile),
		ProcessedDir:     filepath.Dir(processedFile),
		ReportsDir:       under(dataDir, cfg.ReportsDir),
		LogsDir:          under(baseDir, cfg.LogsDir),
		RawDataCSV:       rawFile,
		ProcessedDataCSV: processedFile,
	}
}

// under joins p onto dir unless p is already absolute
func under(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.RawDir,
		p.ProcessedDir,
		p.ReportsDir,
		p.LogsDir,
	}

	logger := slog.Default()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return under(p.ReportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return under(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("datasets",
			slog.String("raw", p.RawDataCSV),
			slog.Bool("raw_exists", FileExists(p.RawDataCSV)),
			slog.String("processed", p.ProcessedDataCSV),
			slog.Bool("processed_exists", FileExists(p.ProcessedDataCSV)),
		))
}
