package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/sift/internal/config"
	"github.com/Zuo-Peng/sift/internal/index"
	"github.com/Zuo-Peng/sift/internal/search"
	"github.com/Zuo-Peng/sift/internal/tui"
)

func listCmd() *cobra.Command {
	var source, since string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse all sessions sorted by modification time",
		Long:  `Opens a TUI panel showing all indexed sessions, newest first. Type to filter by conversation content.`,
		Args:  cobra.NoArgs,
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

			index.IndexAll(db, cfg.CLIRoot, cfg.DesktopRoot, cfg.Limits())

			opts := search.Options{
				Source: source,
				Since:  since,
				Limit:  limit,
			}

			return tui.RunList(db, opts)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Filter by source (claude_cli/claude_desktop)")
	cmd.Flags().StringVar(&since, "since", "", "Filter sessions started since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = no limit)")

	return cmd
}
