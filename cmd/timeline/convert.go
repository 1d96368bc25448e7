package main

import (
	"fmt"
	"io"
	"strconv"

	"formation-hq/timeline/pkg/cli"
	"formation-hq/timeline/pkg/timeline"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert retention durations",
	Long: `Convert retention durations between a magnitude and unit and seconds.

Units are hours, days, weeks, months (31 days) and years (366 days).

Examples:
  # 2 weeks in seconds
  timeline convert to-seconds 2 weeks

  # Largest whole unit for 1209600 seconds
  timeline convert from-seconds 1209600`,
}

var convertToSecondsCmd = &cobra.Command{
	Use:   "to-seconds <magnitude> <unit>",
	Short: "Convert a magnitude and unit to seconds",
	Args:  cobra.ExactArgs(2),
	RunE:  runConvertToSeconds,
}

var convertFromSecondsCmd = &cobra.Command{
	Use:   "from-seconds <seconds>",
	Short: "Express seconds in the largest unit that divides them",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvertFromSeconds,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.AddCommand(convertToSecondsCmd)
	convertCmd.AddCommand(convertFromSecondsCmd)
}

// conversion is the result of both convert subcommands.
type conversion struct {
	Magnitude float64 `json:"magnitude" yaml:"magnitude"`
	Unit      string  `json:"unit" yaml:"unit"`
	Seconds   int64   `json:"seconds" yaml:"seconds"`
	Display   string  `json:"display" yaml:"display"`
}

func (c conversion) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d seconds = %s\n", c.Seconds, c.Display)
	return err
}

func runConvertToSeconds(cmd *cobra.Command, args []string) error {
	magnitude, err := strconv.ParseFloat(args[0], 64)
	if err != nil || magnitude < 0 {
		return cli.NewConfigError("magnitude", fmt.Sprintf("%q is not a non-negative number", args[0]))
	}
	unit, err := timeline.ParseDurationUnit(args[1])
	if err != nil {
		return cli.NewConfigError("unit", err.Error())
	}

	seconds := timeline.ToSeconds(magnitude, unit)
	return render(cmd, conversion{
		Magnitude: magnitude,
		Unit:      unit.String(),
		Seconds:   seconds,
		Display:   timeline.FormatRetention(seconds),
	})
}

func runConvertFromSeconds(cmd *cobra.Command, args []string) error {
	seconds, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || seconds < 0 {
		return cli.NewConfigError("seconds", fmt.Sprintf("%q is not a non-negative integer", args[0]))
	}

	magnitude, unit := timeline.FromSeconds(seconds)
	return render(cmd, conversion{
		Magnitude: magnitude,
		Unit:      unit.String(),
		Seconds:   seconds,
		Display:   timeline.FormatRetention(seconds),
	})
}
