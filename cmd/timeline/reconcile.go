package main

import (
	"fmt"
	"log/slog"

	"formation-hq/timeline/pkg/cli"
	"formation-hq/timeline/pkg/config"
	"formation-hq/timeline/pkg/telemetry/logging"
	"formation-hq/timeline/pkg/timeline"
	"formation-hq/timeline/pkg/timeline/reconcile"
	"formation-hq/timeline/pkg/timeline/storage"

	"github.com/spf13/cobra"
)

var reconcileFlags struct {
	volume  string
	desired string
	preset  string
	from    string
	mode    string
	dryRun  bool
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Apply a desired policy list to a volume",
	Long: `Apply a desired policy list to a volume.

The desired list comes from exactly one of:
  --desired FILE   a YAML or JSON list of {id, name, recurrence_rule, retention, use}
  --preset LABEL   a preset template, every rule selected
  --from VOLUME    the policies attached to another volume

Modes:
  edit    diff against the volume's attached policies (default)
  create  the volume has no policies yet; selected entries are created
  clone   every entry is created afresh under a new id

Operations that fail are reported and not retried; the command then exits 3.

Examples:
  # Preview an edit
  timeline reconcile --volume vol-1 --desired policies.yaml --dry-run

  # Start a new volume on the Dense preset
  timeline reconcile --volume vol-2 --mode create --preset Dense

  # Copy vol-1's policies to vol-3
  timeline reconcile --volume vol-3 --mode clone --from vol-1`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

var releaseFlags struct {
	volume string
}

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Detach and delete every policy of a volume",
	Long: `Detach and delete every policy attached to a volume, as when the volume
itself is deleted.`,
	Args: cobra.NoArgs,
	RunE: runRelease,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(releaseCmd)

	reconcileCmd.Flags().StringVar(&reconcileFlags.volume, "volume", "", "volume id (required)")
	reconcileCmd.Flags().StringVar(&reconcileFlags.desired, "desired", "", "desired policy file (- for stdin)")
	reconcileCmd.Flags().StringVar(&reconcileFlags.preset, "preset", "", "preset label to apply")
	reconcileCmd.Flags().StringVar(&reconcileFlags.from, "from", "", "volume whose policies to copy")
	reconcileCmd.Flags().StringVar(&reconcileFlags.mode, "mode", "edit", "edit, create or clone")
	reconcileCmd.Flags().BoolVar(&reconcileFlags.dryRun, "dry-run", false, "print the plan without applying it")

	releaseCmd.Flags().StringVar(&releaseFlags.volume, "volume", "", "volume id (required)")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	if reconcileFlags.volume == "" {
		return cli.NewConfigError("volume", "--volume is required")
	}
	mode, err := reconcile.ParseMode(reconcileFlags.mode)
	if err != nil {
		return cli.NewConfigError("mode", err.Error())
	}
	sources := 0
	for _, s := range []string{reconcileFlags.desired, reconcileFlags.preset, reconcileFlags.from} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return cli.NewConfigError("desired", "exactly one of --desired, --preset or --from is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return cli.NewCommandError("reconcile", err)
	}
	defer store.Close()

	volume := timeline.VolumeID(reconcileFlags.volume)
	ctx := logging.WithVolume(commandContext(cmd), string(volume))

	desired, err := desiredList(cmd, cfg, store)
	if err != nil {
		return err
	}

	req := reconcile.Request{VolumeID: volume, Mode: mode, Desired: desired}
	if mode == reconcile.ModeEdit {
		// Fetched once so the plan and the run see the same state.
		if req.Current, err = store.ListAttached(ctx, volume); err != nil {
			return cli.NewCommandError("reconcile", fmt.Errorf("failed to list attached policies: %w", err))
		}
	}

	planner := reconcile.New(store, reconcileConfig(cfg))
	plan, err := planner.Plan(ctx, req)
	if err != nil {
		return cli.NewCommandError("reconcile", err)
	}
	if reconcileFlags.dryRun {
		return render(cmd, reportView{VolumeID: string(volume), Mode: mode, Plan: plan, Outcomes: []reconcile.OutcomeReport{}})
	}

	var opts []reconcile.Option
	if outputFormat == string(cli.FormatText) || outputFormat == "" {
		progress := cli.NewProgressReporter(stderr(cmd))
		progress.Start(int64(plan.Operations()))
		opts = append(opts, reconcile.WithRecorder(progress))
	}
	res, err := reconcile.New(store, reconcileConfig(cfg), opts...).Reconcile(ctx, req)
	if err != nil {
		return cli.NewCommandError("reconcile", err)
	}
	return finish(cmd, "reconcile", res)
}

// desiredList loads the desired entries from whichever source flag is set.
func desiredList(cmd *cobra.Command, cfg *config.Config, store storage.Backend) ([]timeline.DesiredPolicy, error) {
	switch {
	case reconcileFlags.desired != "":
		desired, err := readDesired(reconcileFlags.desired)
		if err != nil {
			return nil, cli.NewCommandError("reconcile", err)
		}
		return desired, nil

	case reconcileFlags.preset != "":
		lib, err := loadPresets(cfg)
		if err != nil {
			return nil, err
		}
		desired, err := lib.Desired(reconcileFlags.preset)
		if err != nil {
			return nil, cli.NewConfigError("preset", err.Error())
		}
		return desired, nil

	default:
		src, err := store.ListAttached(commandContext(cmd), timeline.VolumeID(reconcileFlags.from))
		if err != nil {
			return nil, cli.NewCommandError("reconcile", fmt.Errorf("failed to read volume %s: %w", reconcileFlags.from, err))
		}
		desired := make([]timeline.DesiredPolicy, len(src))
		for i, p := range src {
			desired[i] = timeline.DesiredPolicy{RetentionPolicy: p, Use: true}
		}
		return desired, nil
	}
}

func runRelease(cmd *cobra.Command, args []string) error {
	if releaseFlags.volume == "" {
		return cli.NewConfigError("volume", "--volume is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return cli.NewCommandError("release", err)
	}
	defer store.Close()

	volume := timeline.VolumeID(releaseFlags.volume)
	res, err := reconcile.New(store, reconcileConfig(cfg)).Release(logging.WithVolume(commandContext(cmd), string(volume)), volume)
	if err != nil {
		return cli.NewCommandError("release", err)
	}
	return finish(cmd, "release", res)
}

func reconcileConfig(cfg *config.Config) reconcile.Config {
	return reconcile.Config{
		Concurrency: cfg.Reconcile.Concurrency,
		NameSuffix:  cfg.Reconcile.NameSuffix,
	}
}

// finish prints the report and turns failed operations into a PartialError.
func finish(cmd *cobra.Command, name string, res reconcile.Result) error {
	report := res.Report()
	if err := render(cmd, reportView(report)); err != nil {
		return err
	}
	if report.Failed > 0 {
		slog.Debug("run finished with failures", "run_id", res.RunID, "error", res.Err())
		return cli.NewCommandError(name, &cli.PartialError{Failed: report.Failed, Total: len(report.Outcomes)})
	}
	return nil
}
