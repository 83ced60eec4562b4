package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"langmux/internal/index"
	"langmux/internal/pipeline"
	"langmux/internal/runlock"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var noIndex bool

	cmd := &cobra.Command{
		Use:   "run <directory>",
		Short: "Run the full pipeline over a library tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := ctx.buildToolchain()
			if err != nil {
				return err
			}
			cfg := tc.cfg

			lock, err := runlock.Acquire(cfg.Run.LockPath, cfg.Run.LockAttempts,
				time.Duration(cfg.Run.LockBackoffMS)*time.Millisecond)
			if err != nil {
				return err
			}
			defer lock.Release()

			var store *index.Store
			if cfg.Paths.IndexDB != "" && !noIndex {
				store, err = index.Open(cmd.Context(), cfg.Paths.IndexDB)
				if err != nil {
					return err
				}
				defer store.Close()
			}

			p := pipeline.New(cfg, tc.logger, tc.tagger, tc.embedder, tc.embeddedTagger, store)
			summary, err := p.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Metric", "Count"},
				[][]string{
					{"Videos", strconv.Itoa(summary.Videos)},
					{"Skipped", strconv.Itoa(summary.Skipped)},
					{"Subtitles merged", strconv.Itoa(summary.SubtitlesMerged)},
					{"Streams tagged", strconv.Itoa(summary.StreamsTagged)},
					{"Relocated", strconv.Itoa(summary.Relocated)},
					{"Junk files removed", strconv.Itoa(summary.Cleanup.FilesRemoved)},
					{"Folders removed", strconv.Itoa(summary.Cleanup.DirsRemoved + summary.Cleanup.EmptyDirsRemoved)},
					{"Errors", strconv.Itoa(summary.Errors)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			if summary.Errors > 0 {
				return fmt.Errorf("run finished with %d errors; see the log for details", summary.Errors)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noIndex, "no-index", false, "Process every file even if indexed as done")
	return cmd
}
