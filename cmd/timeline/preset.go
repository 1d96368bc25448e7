package main

import (
	"fmt"
	"io"

	"formation-hq/timeline/pkg/cli"
	"formation-hq/timeline/pkg/timeline/preset"

	"github.com/spf13/cobra"
)

var presetFlags struct {
	file string
}

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Inspect the retention presets",
	Long: `Inspect the retention presets.

The built-in presets are Standard, Sparse and Dense. A preset file named in the
configuration (presets.file) can add templates or replace the built-ins.

Examples:
  # List presets
  timeline preset list

  # Which preset does a policy list match?
  timeline preset match --file policies.yaml`,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the preset templates",
	Args:  cobra.NoArgs,
	RunE:  runPresetList,
}

var presetMatchCmd = &cobra.Command{
	Use:   "match",
	Short: "Name the preset a policy list matches",
	Long: `Name the preset a policy list matches, or "Custom" if none does.

Policies match a template when their frequencies pair up one to one with the
template's and each pair has the same retention. Names, ids and times are ignored.`,
	Args: cobra.NoArgs,
	RunE: runPresetMatch,
}

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetMatchCmd)

	presetMatchCmd.Flags().StringVarP(&presetFlags.file, "file", "f", "", "policy list file, YAML or JSON (- for stdin)")
}

func runPresetList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lib, err := loadPresets(cfg)
	if err != nil {
		return err
	}
	return render(cmd, templateList(lib.Templates()))
}

func runPresetMatch(cmd *cobra.Command, args []string) error {
	if presetFlags.file == "" {
		return cli.NewConfigError("file", "--file is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lib, err := loadPresets(cfg)
	if err != nil {
		return err
	}

	policies, err := readPolicies(presetFlags.file)
	if err != nil {
		return cli.NewCommandError("preset match", err)
	}
	return render(cmd, matchView(lib.Match(policies)))
}

// matchView prints only the label in text form.
type matchView preset.Template

func (m matchView) WriteText(w io.Writer) error {
	_, err := fmt.Fprintln(w, m.Label)
	return err
}
