package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// Fields absent from the file keep their defaults. The configuration is
// validated but not modified by environment variables; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration and applies environment
// variable overrides. Environment variables follow the naming convention
// TIMELINE_SECTION_FIELD (e.g., TIMELINE_SERVER_LISTEN_ADDRESS) and always
// take precedence over the file. An empty path skips the file and starts
// from defaults.
//
// The loading sequence is:
// 1. Load YAML from file (or defaults)
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefault()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format TIMELINE_SECTION_FIELD. Values that
// fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Store overrides
	envString("TIMELINE_STORE_BACKEND", &cfg.Store.Backend)
	envString("TIMELINE_STORE_SQLITE_PATH", &cfg.Store.SQLite.Path)
	envString("TIMELINE_STORE_SQLITE_DRIVER", &cfg.Store.SQLite.Driver)
	envInt("TIMELINE_STORE_SQLITE_MAX_OPEN_CONNS", &cfg.Store.SQLite.MaxOpenConns)
	envBool("TIMELINE_STORE_SQLITE_WAL_MODE", &cfg.Store.SQLite.WALMode)
	envDuration("TIMELINE_STORE_SQLITE_BUSY_TIMEOUT", &cfg.Store.SQLite.BusyTimeout)
	envString("TIMELINE_STORE_REST_BASE_URL", &cfg.Store.REST.BaseURL)
	envString("TIMELINE_STORE_REST_AUTH_HEADER", &cfg.Store.REST.AuthHeader)
	envString("TIMELINE_STORE_REST_AUTH_VALUE", &cfg.Store.REST.AuthValue)
	envDuration("TIMELINE_STORE_REST_TIMEOUT", &cfg.Store.REST.Timeout)

	// Preset overrides
	envString("TIMELINE_PRESETS_FILE", &cfg.Presets.File)
	envBool("TIMELINE_PRESETS_WATCH", &cfg.Presets.Watch)
	envDuration("TIMELINE_PRESETS_DEBOUNCE", &cfg.Presets.Debounce)

	// Reconcile overrides
	envInt("TIMELINE_RECONCILE_CONCURRENCY", &cfg.Reconcile.Concurrency)
	envBool("TIMELINE_RECONCILE_NAME_SUFFIX", &cfg.Reconcile.NameSuffix)

	// Server overrides
	envString("TIMELINE_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("TIMELINE_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("TIMELINE_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("TIMELINE_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Telemetry overrides
	envString("TIMELINE_TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TIMELINE_TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TIMELINE_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TIMELINE_TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
