package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"langmux/internal/language"
)

func newAudioCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "audio <file>",
		Short: "Infer and embed audio languages for one container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := ctx.buildToolchain()
			if err != nil {
				return err
			}

			report, err := tc.tagger.TagFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(report.Streams))
			for _, stream := range report.Streams {
				source := "classified"
				switch {
				case stream.Reused:
					source = "existing tag"
				case stream.Err != nil:
					source = "failed"
				case stream.Language == "":
					source = "undetermined"
				}
				rows = append(rows, []string{
					strconv.Itoa(stream.Stream.AudioIndex),
					stream.Stream.Codec,
					language.DisplayName(stream.Language),
					fmt.Sprintf("%.2f", stream.Confidence),
					source,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Stream", "Codec", "Language", "Confidence", "Source"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			if report.Rewritten {
				fmt.Fprintf(out, "Updated %s\n", report.Path)
			} else {
				fmt.Fprintln(out, "No tags needed updating")
			}
			return nil
		},
	}
}
