package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/sift/internal/config"
	"github.com/Zuo-Peng/sift/internal/index"
	"github.com/Zuo-Peng/sift/internal/open"
)

func openCmd() *cobra.Command {
	var hitEventID int

	cmd := &cobra.Command{
		Use:   "open <sessionKey>",
		Short: "Open the original artifact in $EDITOR at the hit line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			return open.OpenSession(db, args[0], hitEventID)
		},
	}

	cmd.Flags().IntVar(&hitEventID, "hit", -1, "Event ID to jump to")

	return cmd
}
