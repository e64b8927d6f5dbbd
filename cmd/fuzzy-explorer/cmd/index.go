package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brianly1003/fuzzy-explorer/internal/app"
	"github.com/brianly1003/fuzzy-explorer/internal/icon"
	"github.com/brianly1003/fuzzy-explorer/internal/search"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	listIcons   bool
	searchLimit int
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Rebuild the index from the configured patterns",
	Long: `Expand every pattern in explorer.yaml, drop ignored paths and write the
sorted result to the cache file. Ctrl-C interrupts the build and keeps the
previous index.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			start := time.Now()
			if err := a.Index().Rebuild(ctx); err != nil {
				return err
			}
			fmt.Printf("Indexed %s files in %s\n",
				humanize.Comma(int64(a.Index().Len())),
				time.Since(start).Round(time.Millisecond))
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the indexed paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			for _, item := range a.Index().Items() {
				if listIcons {
					fmt.Printf("%-22s %s\n", icon.Classify(item), item)
					continue
				}
				fmt.Println(item)
			}
			return nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search the index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			limit := searchLimit
			if limit <= 0 {
				limit = a.Config().Explorer.MaxResults
			}

			color.NoColor = color.NoColor || noColor
			mark := color.New(color.FgYellow, color.Bold).SprintFunc()

			query := strings.Join(args, " ")
			for _, m := range search.Find(query, a.Index().Items(), limit) {
				fmt.Println(search.Highlight(m.Path, m.Indexes, func(s string) string { return mark(s) }))
			}
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the index status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			fmt.Printf("Config dir:  %s\n", a.Config().Dir)
			fmt.Printf("Cache file:  %s\n", a.Config().CacheFile())
			fmt.Printf("Items:       %s\n", humanize.Comma(int64(a.Index().Len())))

			if h := a.History(); h != nil {
				last, ok, err := h.Last(cmd.Context())
				if err != nil {
					return err
				}
				if ok {
					fmt.Printf("Last build:  %s (%s, %s)\n", humanize.Time(last.StartedAt), last.Status, last.Duration)
				}
			}

			fmt.Println()
			fmt.Println(a.Index().HelpMarkdown())
			return nil
		})
	},
}

func init() {
	listCmd.Flags().BoolVar(&listIcons, "icons", false, "prefix each path with its icon class")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default: explorer.max_results)")
}
