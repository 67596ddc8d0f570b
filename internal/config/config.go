package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"happydash/internal/errors"
)

// Source kinds accepted by DATA_SOURCE
const (
	SourceCSV      = "csv"
	SourceSheet    = "sheet"
	SourceXLSX     = "xlsx"
	SourcePostgres = "postgres"
	SourceSample   = "sample"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Source    SourceConfig
	Database  DatabaseConfig
	Dashboard DashboardConfig
	Logging   LoggingConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// SourceConfig says where the dataset comes from
type SourceConfig struct {
	Kind         string
	URL          string
	SheetID      string
	SheetName    string // empty: first sheet of a workbook, "Sheet1" for the sheet source
	Profile      string
	SchemaFile   string
	FetchTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL   string
	Table string
}

// DashboardConfig holds page content settings
type DashboardConfig struct {
	Title            string
	IntroFile        string
	DefaultCountries []string
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level  string
	Format string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Source:    *loadSourceConfig(),
		Database:  *loadDatabaseConfig(),
		Dashboard: *loadDashboardConfig(),
		Logging:   *loadLoggingConfig(),
		Profiling: *loadProfilingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadSourceConfig() *SourceConfig {
	cfg := &SourceConfig{
		Kind:         strings.ToLower(os.Getenv("DATA_SOURCE")),
		URL:          os.Getenv("DATA_URL"),
		SheetID:      os.Getenv("SHEET_ID"),
		SheetName:    os.Getenv("SHEET_NAME"),
		Profile:      os.Getenv("SCHEMA_PROFILE"),
		SchemaFile:   os.Getenv("SCHEMA_FILE"),
		FetchTimeout: getEnvDurationOrDefault("FETCH_TIMEOUT", 30*time.Second),
	}
	if cfg.Kind == "" {
		cfg.Kind = detectSourceKind(cfg.URL, cfg.SheetID, os.Getenv("DATABASE_URL"))
	}
	return cfg
}

// detectSourceKind picks a source when DATA_SOURCE is unset
func detectSourceKind(url, sheetID, databaseURL string) string {
	switch {
	case url != "":
		lower := strings.ToLower(url)
		if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm") {
			return SourceXLSX
		}
		return SourceCSV
	case sheetID != "":
		return SourceSheet
	case databaseURL != "":
		return SourcePostgres
	default:
		return SourceSample
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:   os.Getenv("DATABASE_URL"),
		Table: getEnvOrDefault("DB_TABLE", "happiness_observations"),
	}
}

func loadDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		Title:            getEnvOrDefault("DASHBOARD_TITLE", "World Happiness Dashboard (2011–2024)"),
		IntroFile:        os.Getenv("INTRO_FILE"),
		DefaultCountries: getEnvListOrDefault("DEFAULT_COUNTRIES", []string{"Brazil", "Finland", "United States"}),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("PORT must be numeric, got %q", config.Server.Port))
	}

	src := config.Source
	switch src.Kind {
	case SourceCSV:
		if src.URL == "" {
			return errors.ConfigInvalid("DATA_URL is required for the csv source")
		}
	case SourceXLSX:
		if src.URL == "" && src.SheetID == "" {
			return errors.ConfigInvalid("DATA_URL or SHEET_ID is required for the xlsx source")
		}
	case SourceSheet:
		if src.SheetID == "" {
			return errors.ConfigInvalid("SHEET_ID is required for the sheet source")
		}
	case SourcePostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres source")
		}
	case SourceSample:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown DATA_SOURCE %q", src.Kind))
	}
	if src.FetchTimeout <= 0 {
		return errors.ConfigInvalid("FETCH_TIMEOUT must be positive")
	}

	switch config.Logging.Format {
	case "json", "console":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("LOG_FORMAT must be json or console, got %q", config.Logging.Format))
	}

	if config.Profiling.Enabled && config.Profiling.Port == config.Server.Port {
		return errors.ConfigInvalid("PPROF_PORT must differ from PORT")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// comma separated, blanks dropped
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
