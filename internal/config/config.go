package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"jobmetrics/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Paths    PathConfig
	Database DatabaseConfig
	Pipeline PipelineConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port          string
	GinMode       string
	MaxUploadSize int64 // bytes
}

// PathConfig holds file system paths
type PathConfig struct {
	ExcelFile    string
	ArtifactsDir string
}

// DatabaseConfig holds the optional run store settings. An empty URL
// disables the store.
type DatabaseConfig struct {
	Driver string
	URL    string
}

// Enabled reports whether a run store is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// PipelineConfig holds report building settings
type PipelineConfig struct {
	CacheEnabled     bool
	CacheSize        int
	BatchParallelism int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Paths:    *loadPathConfig(),
		Pipeline: *loadPipelineConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:          getEnvOrDefault("PORT", "8080"),
		GinMode:       getEnvOrDefault("GIN_MODE", "release"),
		MaxUploadSize: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 20)) << 20,
	}
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		ExcelFile:    getEnvOrDefault("EXCEL_FILE", ""),
		ArtifactsDir: getEnvOrDefault("ARTIFACTS_DIR", "artifacts"),
	}
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	driver := getEnvOrDefault("DATABASE_DRIVER", "")
	if driver == "" {
		driver = inferDriver(url)
	}
	switch driver {
	case "postgres", "sqlite3":
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("DATABASE_DRIVER must be postgres or sqlite3, got %q", driver))
	}
	return &DatabaseConfig{Driver: driver, URL: url}, nil
}

// inferDriver picks postgres for postgres:// URLs and sqlite3 otherwise.
func inferDriver(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}

func loadPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		CacheEnabled:     getEnvBoolOrDefault("CACHE_ENABLED", true),
		CacheSize:        getEnvIntOrDefault("CACHE_SIZE", 16),
		BatchParallelism: getEnvIntOrDefault("BATCH_PARALLELISM", 4),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT cannot be empty")
	}
	if config.Server.MaxUploadSize <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Pipeline.BatchParallelism < 1 {
		return errors.ConfigInvalid("BATCH_PARALLELISM must be at least 1")
	}
	if config.Pipeline.CacheEnabled && config.Pipeline.CacheSize < 1 {
		return errors.ConfigInvalid("CACHE_SIZE must be at least 1 when the cache is enabled")
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

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
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
