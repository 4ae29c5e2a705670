// Package config provides centralized configuration management for the
// mobility indicators toolkit. It handles loading configuration from multiple
// sources, validation, and dataset path resolution.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern MOBILITY_<SECTION>_<FIELD>:
//
//	MOBILITY_CONFIG=/etc/mobility/config.yaml
//	MOBILITY_LOGGING_LEVEL=debug
//	MOBILITY_PATHS_DATA_DIR=/srv/data
//	MOBILITY_QUALITY_THRESHOLD=0.3
//	MOBILITY_TELEMETRY_ENABLED=true
//
// # Path Management
//
// Paths resolves the raw and processed dataset files from the configured
// data directory:
//
//	paths, err := cfg.ResolvePaths()
//	raw := paths.RawDataCSV
//	out := paths.GetReportPath("regional_summary.csv")
//
// # Validation
//
// Struct tags are checked with go-playground/validator at load time:
// thresholds and sample ratios must lie in [0,1] and enumerated options
// (log level, output, exporters) must be known values.
package config
