// Package config loads typed configuration for the development-lifecycle
// state engine from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the engine.
type Config struct {
	Store         StoreConfig
	Paths         PathsConfig
	Redis         RedisConfig
	Log           LogConfig
	Observability ObservabilityConfig
}

// StoreConfig holds StateStore (C2) connection configuration.
type StoreConfig struct {
	// Driver selects the GORM dialector: "sqlite" (default, embedded
	// single-file database) or "postgres".
	Driver string

	// SQLitePath is the database file path used when Driver == "sqlite".
	SQLitePath string

	// Postgres connection parameters, used when Driver == "postgres".
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	// MigrationsDir points at the golang-migrate source directory.
	MigrationsDir string
}

// PathsConfig holds the project-relative filesystem roots described in
// spec.md §6.
type PathsConfig struct {
	ProjectRoot string
	DocsRoot    string
	StateDir    string
}

// RedisConfig holds the optional Redis-backed ContextCache connection
// configuration (C10).
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string // json or text
}

// ObservabilityConfig holds tracing/metrics configuration.
type ObservabilityConfig struct {
	ServiceName     string
	ServiceVersion  string
	Environment     string
	MetricsEnabled  bool
	TracingEnabled  bool
	TracingEndpoint string
}

// Load loads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Store: StoreConfig{
			Driver:        getEnv("STORE_DRIVER", "sqlite"),
			SQLitePath:    getEnv("STORE_SQLITE_PATH", ".gaoforge/documents.db"),
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", ""),
			DBName:        getEnv("DB_NAME", "gaoforge"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			MigrationsDir: getEnv("STORE_MIGRATIONS_DIR", "internal/store/migrations"),
		},
		Paths: PathsConfig{
			ProjectRoot: getEnv("PROJECT_ROOT", "."),
			DocsRoot:    getEnv("DOCS_ROOT", "docs"),
			StateDir:    getEnv("STATE_DIR", ".gaoforge"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Observability: ObservabilityConfig{
			ServiceName:     getEnv("SERVICE_NAME", "gaoforge-dev-engine"),
			ServiceVersion:  getEnv("SERVICE_VERSION", "1.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			MetricsEnabled:  getEnvAsBool("METRICS_ENABLED", true),
			TracingEnabled:  getEnvAsBool("TRACING_ENABLED", false),
			TracingEndpoint: getEnv("TRACING_ENDPOINT", "http://localhost:4318/v1/traces"),
		},
	}

	if cfg.Store.Driver != "sqlite" && cfg.Store.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q: must be sqlite or postgres", cfg.Store.Driver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
