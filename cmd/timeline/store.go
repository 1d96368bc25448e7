package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"formation-hq/timeline/pkg/cli"
	"formation-hq/timeline/pkg/config"
	"formation-hq/timeline/pkg/timeline"
	"formation-hq/timeline/pkg/timeline/preset"
	"formation-hq/timeline/pkg/timeline/storage"

	"gopkg.in/yaml.v3"
)

// openStore opens the configured policy store backend.
func openStore(cfg *config.Config) (storage.Backend, error) {
	sc := cfg.Store
	if sc.Backend == storage.BackendSQLite {
		if dir := filepath.Dir(sc.SQLite.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	return storage.Open(storage.Options{
		Backend: sc.Backend,
		SQLite: &storage.SQLiteConfig{
			Path:         sc.SQLite.Path,
			Driver:       sc.SQLite.Driver,
			MaxOpenConns: sc.SQLite.MaxOpenConns,
			MaxIdleConns: sc.SQLite.MaxIdleConns,
			WALMode:      sc.SQLite.WALMode,
			BusyTimeout:  sc.SQLite.BusyTimeout,
		},
		REST: storage.RESTConfig{
			BaseURL:    sc.REST.BaseURL,
			AuthHeader: sc.REST.AuthHeader,
			AuthValue:  sc.REST.AuthValue,
			Timeout:    sc.REST.Timeout,
		},
	})
}

// loadPresets returns the configured preset library.
func loadPresets(cfg *config.Config) (*preset.Library, error) {
	if cfg.Presets.File == "" {
		return preset.DefaultLibrary(), nil
	}
	lib, err := preset.LoadFile(cfg.Presets.File)
	if err != nil {
		return nil, cli.NewConfigError("presets.file", err.Error())
	}
	return lib, nil
}

// readYAML decodes a YAML (or JSON) file into v. A path of "-" reads stdin.
func readYAML(path string, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %q: %w", path, err)
	}
	return nil
}

// readDesired reads a desired-policy list.
func readDesired(path string) ([]timeline.DesiredPolicy, error) {
	var desired []timeline.DesiredPolicy
	if err := readYAML(path, &desired); err != nil {
		return nil, err
	}
	for i, d := range desired {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%s: entry %d (%q): %w", path, i, d.Name, err)
		}
	}
	return desired, nil
}

// readPolicies reads a plain policy list.
func readPolicies(path string) ([]timeline.RetentionPolicy, error) {
	var policies []timeline.RetentionPolicy
	if err := readYAML(path, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}
