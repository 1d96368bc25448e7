package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"formation-hq/timeline/pkg/cli"
	"formation-hq/timeline/pkg/config"
	"formation-hq/timeline/pkg/server"
	"formation-hq/timeline/pkg/telemetry/metrics"
	"formation-hq/timeline/pkg/timeline/preset"
	"formation-hq/timeline/pkg/timeline/reconcile"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	listenAddress string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the policy API",
	Long: `Serve the policy store, presets and reconciler over HTTP.

The API exposes the snapshot policy routes of the configuration API, so a
second timeline instance can use this one as its rest store backend.

Examples:
  # Start with default config
  timeline serve

  # Override listen address
  timeline serve --listen 0.0.0.0:7777

  # Validate config without starting the server
  timeline serve --dry-run`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.dryRun {
		fmt.Fprintln(stdout(cmd), "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	logger := slog.Default()

	store, err := openStore(cfg)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer store.Close()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	presets, err := presetSource(ctx, cfg, collector, logger)
	if err != nil {
		return err
	}

	reconciler := reconcile.New(store, reconcileConfig(cfg),
		reconcile.WithRecorder(collector),
		reconcile.WithLogger(logger.With("component", "timeline.reconcile")),
	)

	srv, err := server.NewServer(&cfg.Server, server.Deps{
		Store:       store,
		Reconciler:  reconciler,
		Presets:     presets,
		Metrics:     collector,
		MetricsPath: cfg.Telemetry.Metrics.Path,
		Logger:      logger,
		Version:     Version,
		Commit:      GitCommit,
		BuildTime:   BuildDate,
	})
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	logger.Info("starting timeline",
		"version", Version,
		"store", cfg.Store.Backend,
		"listen", cfg.Server.ListenAddress,
		"metrics", cfg.Telemetry.Metrics.Enabled,
	)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}

// presetSource loads the preset library. With presets.watch set the file
// is watched until ctx ends and every reload is counted.
func presetSource(ctx context.Context, cfg *config.Config, collector *metrics.Collector, logger *slog.Logger) (server.PresetSource, error) {
	if cfg.Presets.File == "" || !cfg.Presets.Watch {
		lib, err := loadPresets(cfg)
		if err != nil {
			return nil, err
		}
		collector.SetPresetTemplates(len(lib.Templates()))
		return server.StaticPresets{Library: lib}, nil
	}

	w, err := preset.NewWatcher(cfg.Presets.File, cfg.Presets.Debounce, logger)
	if err != nil {
		return nil, cli.NewConfigError("presets.file", err.Error())
	}
	collector.SetPresetTemplates(len(w.Current().Templates()))
	w.OnReload(func(err error) {
		collector.RecordPresetReload(err)
		if err == nil {
			collector.SetPresetTemplates(len(w.Current().Templates()))
		}
	})

	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("preset watcher stopped", "error", err)
		}
	}()
	return w, nil
}
