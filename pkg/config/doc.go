// Package config provides configuration management for the timeline
// service.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("timeline.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("timeline.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention TIMELINE_SECTION_FIELD.
// For example:
//
//   - TIMELINE_STORE_BACKEND overrides store.backend
//   - TIMELINE_STORE_SQLITE_DRIVER overrides store.sqlite.driver
//   - TIMELINE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
//	if err := config.Initialize("timeline.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// # Example Configuration
//
//	store:
//	  backend: sqlite
//	  sqlite:
//	    path: data/timeline.db
//	    driver: sqlite
//
//	presets:
//	  file: presets.yaml
//	  watch: true
//
//	reconcile:
//	  concurrency: 4
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
package config
