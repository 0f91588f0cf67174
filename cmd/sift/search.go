package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/sift/internal/config"
	"github.com/Zuo-Peng/sift/internal/extract"
	"github.com/Zuo-Peng/sift/internal/index"
	"github.com/Zuo-Peng/sift/internal/search"
	"github.com/Zuo-Peng/sift/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorGreen   = "\033[1;32m"
	sColorDim     = "\033[2m"
)

func colorizeSource(source string) string {
	switch source {
	case string(extract.SourceCLI):
		return sColorBlue + "cli" + sColorReset
	case string(extract.SourceDesktop):
		return sColorGreen + "desktop" + sColorReset
	default:
		return source
	}
}

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func searchCmd() *cobra.Command {
	var source, role, kind, since string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across recovered conversations",
		Long: `Search recovered conversations using FTS5. Output is TSV for fzf integration:
  sessionKey, eventId, mtime, source, project, firstUserText, snippet

Recommended shell function (add to .zshrc):
  siftf() {
    sift search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'sift preview {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --preview-debounce=150 \
      --bind 'enter:execute(sift open {1} --hit {2})'
  }`,
		Args: cobra.ExactArgs(1),
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

			// Auto-update index before searching
			index.IndexAll(db, cfg.CLIRoot, cfg.DesktopRoot, cfg.Limits())

			opts := search.Options{
				Source: source,
				Role:   role,
				Kind:   kind,
				Since:  since,
				Limit:  limit,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				snippet := strings.ReplaceAll(r.Snippet, "\t", " ")
				snippet = strings.ReplaceAll(snippet, "\n", " ")
				snippet = colorizeSnippet(snippet)
				title := strings.ReplaceAll(r.FirstUserText, "\t", " ")
				title = strings.ReplaceAll(title, "\n", " ")
				project := r.Project
				if project == "" {
					project = "-"
				}
				date := ""
				if r.Mtime > 0 {
					date = time.Unix(r.Mtime, 0).Format("2006-01-02 15:04")
				}
				// first two fields (sessionKey, eventID) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s\t%s\t%s\t%s\n",
					r.SessionKey,
					r.EventID,
					sColorDim, date, sColorReset,
					colorizeSource(r.Source),
					project,
					title,
					snippet,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Filter by source (claude_cli/claude_desktop)")
	cmd.Flags().StringVar(&role, "role", "", "Filter by role (user/assistant)")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by event kind (message/snippet/...)")
	cmd.Flags().StringVar(&since, "since", "", "Filter sessions started since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
