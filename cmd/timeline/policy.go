package main

import (
	"fmt"

	"formation-hq/timeline/pkg/cli"
	"formation-hq/timeline/pkg/timeline"

	"github.com/spf13/cobra"
)

var policyFlags struct {
	volume string
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect stored retention policies",
}

var policyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List policies",
	Long: `List the policies attached to a volume, or every stored policy when no
volume is given.

Examples:
  # Policies of vol-1
  timeline policy list --volume vol-1

  # Everything in the store, as YAML usable as a desired list
  timeline policy list -o yaml`,
	Args: cobra.NoArgs,
	RunE: runPolicyList,
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyListCmd)

	policyListCmd.Flags().StringVar(&policyFlags.volume, "volume", "", "volume id")
}

func runPolicyList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return cli.NewCommandError("policy list", err)
	}
	defer store.Close()

	ctx := commandContext(cmd)
	var policies []timeline.RetentionPolicy
	if policyFlags.volume != "" {
		policies, err = store.ListAttached(ctx, timeline.VolumeID(policyFlags.volume))
	} else {
		policies, err = store.List(ctx)
	}
	if err != nil {
		return cli.NewCommandError("policy list", fmt.Errorf("failed to list policies: %w", err))
	}
	return render(cmd, policyTable(policies))
}
