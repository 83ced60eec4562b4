package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"langmux/internal/language"
	"langmux/internal/subtitles"
)

func newSubtitlesCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var tagEmbedded bool

	cmd := &cobra.Command{
		Use:   "subtitles <directory>",
		Short: "Discover and merge external subtitles in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := ctx.buildToolchain()
			if err != nil {
				return err
			}

			plans, err := subtitles.Discover(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			merged := 0
			for _, plan := range plans {
				paths := make([]string, 0, len(plan.Candidates))
				for _, c := range plan.Candidates {
					paths = append(paths, c.Path)
				}
				kept, err := subtitles.Deduplicate(paths)
				if err != nil {
					return err
				}
				candidates := make([]subtitles.Candidate, 0, len(kept))
				for _, path := range kept {
					candidates = append(candidates, subtitles.Candidate{Path: path})
				}
				candidates = subtitles.Classify(candidates, tc.logger)

				rows := make([][]string, 0, len(candidates))
				for _, c := range candidates {
					rows = append(rows, []string{
						filepath.Base(c.Path),
						language.DisplayName(c.Language),
						yesNo(c.SDH),
					})
				}
				fmt.Fprintf(out, "%s\n", filepath.Base(plan.Video))
				if len(rows) == 0 {
					fmt.Fprintln(out, "  no external subtitles found")
					continue
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Subtitle", "Language", "SDH"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))

				if dryRun {
					continue
				}
				count, err := tc.embedder.Embed(cmd.Context(), plan.Video, candidates)
				if err != nil {
					return err
				}
				merged += count
				if tagEmbedded {
					if _, err := tc.embeddedTagger.TagStreams(cmd.Context(), plan.Video); err != nil {
						return err
					}
				}
			}
			if !dryRun {
				fmt.Fprintf(out, "Merged %d subtitle tracks\n", merged)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the merge plan without rewriting anything")
	cmd.Flags().BoolVar(&tagEmbedded, "tag-embedded", false, "Also fill in language and title metadata for embedded subtitle streams")
	return cmd
}
