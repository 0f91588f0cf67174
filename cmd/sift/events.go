package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/sift/internal/config"
	"github.com/Zuo-Peng/sift/internal/extract"
	"github.com/Zuo-Peng/sift/internal/scan"
)

// eventsCmd recovers a single artifact without touching the index. Useful for
// inspecting what the recovery pass actually produces for a file.
func eventsCmd() *cobra.Command {
	var maxEvents int

	cmd := &cobra.Command{
		Use:   "events <path>",
		Short: "Recover and print events from a single session file or store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			fi := scan.FileInfo{Path: path}
			switch {
			case scan.WithinRoot(cfg.CLIRoot, path):
				fi.Root = cfg.CLIRoot
				fi.Source = extract.SourceCLI
			case scan.WithinRoot(cfg.DesktopRoot, path):
				fi.Root = cfg.DesktopRoot
				fi.Source = extract.SourceDesktop
			default:
				return fmt.Errorf("%s is outside the configured roots", path)
			}

			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			fi.Mtime = info.ModTime().Unix()
			fi.Size = info.Size()

			lim := cfg.Limits()
			if maxEvents > 0 {
				lim.MaxEvents = maxEvents
			}

			art, err := scan.ReadArtifact(fi, lim.MaxScanBytes)
			if err != nil {
				return err
			}

			res := extract.Recover(art, lim)

			sum := res.Summary
			fmt.Printf("session:  %s [%s]\n", sum.ID, sum.Source)
			fmt.Printf("project:  %s\n", sum.Project)
			if sum.Cwd != "" {
				fmt.Printf("cwd:      %s\n", sum.Cwd)
			}
			if sum.Model != "" {
				fmt.Printf("model:    %s\n", sum.Model)
			}
			if sum.StartedAt != "" {
				fmt.Printf("started:  %s\n", sum.StartedAt)
			}
			fmt.Printf("events:   %d (from %d raw records)\n\n", len(res.Events), res.RawCount)

			for i, ev := range res.Events {
				header := fmt.Sprintf("[%d] %s/%s", i, ev.Kind, ev.Role)
				if ev.Timestamp != "" {
					header += " " + ev.Timestamp
				}
				if ev.Line > 0 {
					header += fmt.Sprintf(" (line %d)", ev.Line)
				}
				fmt.Println(header)
				fmt.Println(ev.Text)
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxEvents, "max-events", 0, "Cap the number of recovered events (0 = configured default)")

	return cmd
}
