package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mobilitycli/internal/dataprocessing"
	"mobilitycli/internal/errors"
)

// SupportedExtensions lists the dataset file extensions the loader reads
var SupportedExtensions = []string{".csv", ".txt", ".xlsx", ".xlsm"}

// RequiredColumns are the columns every indicator dataset is expected to carry
var RequiredColumns = []string{dataprocessing.ColumnEconomy, dataprocessing.ColumnYear}

// DatasetValidator checks dataset inputs and report outputs
type DatasetValidator struct {
	logger *slog.Logger
}

// NewDatasetValidator creates a new dataset validator
func NewDatasetValidator(logger *slog.Logger) *DatasetValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetValidator{logger: logger}
}

// ValidateDatasetFile checks that path names a readable dataset file. A
// path that does not exist yields a MISSING_FILE error.
func (v *DatasetValidator) ValidateDatasetFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errors.NewMissingFileError(path, err)
	}
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to stat %s", path), err).
			WithContext("path", path)
	}
	if info.IsDir() {
		return errors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a dataset file", path)).
			WithContext("path", path)
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		return errors.NewAppValidationError(fmt.Sprintf("%s is a temporary Excel file", path)).
			WithContext("path", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(SupportedExtensions, ext) {
		// The loader falls back to CSV for unknown extensions
		v.logger.Warn("Unrecognized dataset extension, reading as CSV",
			slog.String("file", path),
			slog.String("extension", ext))
	}

	file, err := os.Open(path)
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err).
			WithContext("path", path)
	}
	file.Close()

	v.logger.Debug("Dataset file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists, creating it when needed, and
// that files can be created in it.
func (v *DatasetValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err).
			WithContext("directory", dir)
	}

	tmp, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err).
			WithContext("directory", dir)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// MissingColumns returns the names in required that t does not have, in
// the order given. Absent columns are logged as a warning.
func (v *DatasetValidator) MissingColumns(t *dataprocessing.Table, required ...string) []string {
	var missing []string
	for _, name := range required {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		v.logger.Warn("Dataset is missing expected columns",
			slog.String("columns", strings.Join(missing, ", ")))
	}
	return missing
}
