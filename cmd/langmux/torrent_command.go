package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"langmux/internal/qbittorrent"
)

func newTorrentsCommand(ctx *commandContext) *cobra.Command {
	torrentsCmd := &cobra.Command{
		Use:   "torrents",
		Short: "qBittorrent housekeeping",
	}

	dropCmd := &cobra.Command{
		Use:   "drop <hash>...",
		Short: "Remove organized torrents from qBittorrent, keeping their files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			client, err := qbittorrent.New(cfg.QBittorrent.Host)
			if err != nil {
				return err
			}
			if err := client.Login(cmd.Context(), cfg.QBittorrent.Username, cfg.QBittorrent.Password); err != nil {
				return err
			}
			if err := client.DeleteTorrents(cmd.Context(), args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dropped %d torrents\n", len(args))
			return nil
		},
	}

	torrentsCmd.AddCommand(dropCmd)
	return torrentsCmd
}
