package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"formation-hq/timeline/pkg/cli"
	"formation-hq/timeline/pkg/config"
	"formation-hq/timeline/pkg/telemetry/logging"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Timeline - snapshot retention policy manager",
	Long: `Timeline manages the snapshot retention policies attached to storage volumes.

A volume's policies are recurrence rules (daily, weekly, monthly or yearly)
paired with how long the snapshots they take are kept. Timeline:
  - converts retention durations to and from seconds
  - recognises the Standard, Sparse and Dense presets in a policy set
  - reconciles a volume to a desired policy list with the minimum of store calls
  - serves the policy store, presets and reconciler over HTTP

Without --config, defaults apply and TIMELINE_* environment variables override them.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text, json, yaml)")
}

// loadConfig reads the configuration and installs the configured logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("config", err.Error())
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	}); err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	config.SetConfig(cfg)
	return cfg, nil
}

// render writes v to the command's output in the --output format.
func render(cmd *cobra.Command, v any) error {
	format, err := cli.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(stdout(cmd), v)
}

func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func stderr(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stderr
	}
	return cmd.ErrOrStderr()
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd == nil || cmd.Context() == nil {
		return context.Background()
	}
	return cmd.Context()
}
