/*
Package cli provides command-line interface utilities for the timeline
command.

Output Formatting:

Results print as text, JSON or YAML. Types that implement TextWriter
render their own text form:

	format, err := cli.ParseFormat(outputFlag)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, report); err != nil {
		return err
	}

Progress Reporting:

SimpleProgress draws a bar on stderr. It satisfies the reconciler's
Recorder, so a run can drive it directly:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(plan.Operations()))
	r := reconcile.New(store, cfg, reconcile.WithRecorder(progress))

Exit Codes:

ExitCode maps command errors to process status: 2 for configuration or
usage errors, 3 when a reconcile run finished with failed operations and 1
for anything else.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
