package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"langmux/internal/audiolang"
	"langmux/internal/deps"
	"langmux/internal/media/ffprobe"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var durationFlag float64

	cmd := &cobra.Command{
		Use:   "plan [file]",
		Short: "Show the sampling offsets planned for a file or duration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			duration := durationFlag
			if len(args) == 1 {
				ffprobePath, err := deps.Require("ffprobe")
				if err != nil {
					return err
				}
				result, err := ffprobe.Inspect(cmd.Context(), ffprobePath, args[0], "")
				if err != nil {
					return err
				}
				duration = result.DurationSeconds()
			} else if duration <= 0 {
				return fmt.Errorf("provide a file or --duration")
			}

			offsets := audiolang.PlanOffsets(duration)
			if len(offsets) == 0 {
				offsets = audiolang.FallbackOffsets()
				fmt.Fprintln(cmd.OutOrStdout(), "No usable window, using fallback offsets")
			}
			rows := make([][]string, 0, len(offsets))
			for i, offset := range offsets {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					(time.Duration(offset) * time.Second).String(),
					strconv.Itoa(offset),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Duration: %.0fs\n", duration)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Sample", "Position", "Seconds"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().Float64Var(&durationFlag, "duration", 0, "Plan for an explicit duration in seconds instead of probing a file")
	return cmd
}
