package config

import "time"

// Config is the root configuration structure for the timeline service.
// It contains the policy store, preset library, reconciler, HTTP server
// and telemetry sections.
type Config struct {
	// Store selects and configures the retention policy store backend.
	Store StoreConfig `yaml:"store"`

	// Presets contains the optional preset file and its watch settings.
	Presets PresetsConfig `yaml:"presets"`

	// Reconcile contains settings for applying policy changes to volumes.
	Reconcile ReconcileConfig `yaml:"reconcile"`

	// Server contains HTTP API server configuration.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StoreConfig contains configuration for the policy store.
type StoreConfig struct {
	// Backend is the store implementation.
	// Options: "memory", "sqlite", "rest"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains settings for the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// REST contains settings for the rest backend.
	REST RESTConfig `yaml:"rest"`
}

// SQLiteConfig contains SQLite store configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/timeline.db"
	Path string `yaml:"path"`

	// Driver is the database/sql driver name.
	// Options: "sqlite3" (mattn/go-sqlite3, cgo), "sqlite" (modernc.org/sqlite)
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RESTConfig contains configuration for the REST store client.
type RESTConfig struct {
	// BaseURL is the configuration API root, e.g. "http://om.local:7777".
	BaseURL string `yaml:"base_url"`

	// AuthHeader is the header carrying the API token (e.g. "FDS-Auth").
	AuthHeader string `yaml:"auth_header"`

	// AuthValue is the API token.
	AuthValue string `yaml:"auth_value"`

	// Timeout bounds each request.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// PresetsConfig contains preset library configuration.
type PresetsConfig struct {
	// File is an optional YAML file of extra or replacement templates.
	// Empty means built-ins only.
	File string `yaml:"file"`

	// Watch reloads File when it changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce is the quiet period before a changed file is reloaded.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// ReconcileConfig contains reconciler configuration.
type ReconcileConfig struct {
	// Concurrency bounds how many operation chains run at once.
	// Default: 8
	Concurrency int `yaml:"concurrency"`

	// NameSuffix appends "_<volume>" to the names of created policies.
	// Default: true
	NameSuffix bool `yaml:"name_suffix"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:7777"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the grace period for in-flight requests on stop.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "timeline"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "snapshot"
	Subsystem string `yaml:"subsystem"`
}
