package config

// Application constants
const (
	AppName    = "Urban Mobility Indicators"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable (MOBILITY_*)
	EnvPrefix = "MOBILITY"
	// ConfigFileEnv names an explicit YAML config file
	ConfigFileEnv = "MOBILITY_CONFIG"

	// File Paths
	DefaultDataDir       = "data"
	DefaultRawFile       = "raw/world_bank_transport_data_raw.csv"
	DefaultProcessedFile = "processed/transport_data_features.csv"
	DefaultReportsDir    = "reports"
	DefaultLogsDir       = "logs"
	DefaultLogFile       = "mobility.log"

	// Quality audit
	DefaultMissingThreshold = 0.5
)
