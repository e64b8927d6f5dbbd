package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/brianly1003/fuzzy-explorer/internal/app"
	"github.com/brianly1003/fuzzy-explorer/internal/commands"
	"github.com/brianly1003/fuzzy-explorer/internal/pathutil"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	editPrint    bool
	historyLimit int
	historyPrune int
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the pattern file",
	Long: `Open explorer.yaml in $VISUAL or $EDITOR, creating it from a commented
template first if it does not exist.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			res, err := a.Commands().Dispatch(cmd.Context(), commands.Edit, nil)
			if err != nil {
				return err
			}
			edit := res.(commands.EditResult)
			if edit.Created {
				fmt.Fprintf(os.Stderr, "Created %s\n", edit.Path)
			}
			if editPrint {
				fmt.Println(edit.Path)
				return nil
			}
			return pathutil.NewEditorWorkspace(pathutil.NewSystemOpener()).Open(edit.Path, "")
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent index builds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			h := a.History()
			if h == nil {
				return fmt.Errorf("build history is disabled (history.enabled)")
			}

			if historyPrune > 0 {
				n, err := h.Prune(cmd.Context(), historyPrune)
				if err != nil {
					return err
				}
				fmt.Printf("Removed %d old builds\n", n)
				return nil
			}

			entries, err := h.Recent(cmd.Context(), historyLimit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No builds recorded yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tSTATUS\tITEMS\tPATTERNS\tDURATION\tERROR")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					humanize.Time(e.StartedAt), e.Status, humanize.Comma(int64(e.Items)),
					e.Patterns, e.Duration, e.Error)
			}
			return w.Flush()
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the index over HTTP and WebSocket",
	Long: `Start the HTTP API and event stream on server.host:server.port.

Routes:
  GET  /health
  GET  /api/status
  GET  /api/items?force=1&icons=1
  GET  /api/search?q=<query>&limit=<n>
  POST /api/rebuild
  GET  /api/commands
  POST /api/commands/{id}
  GET  /ws?events=<type,...>`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Serve(ctx)
		})
	},
}

func init() {
	editCmd.Flags().BoolVar(&editPrint, "print", false, "print the pattern file path instead of opening it")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of builds to show")
	historyCmd.Flags().IntVar(&historyPrune, "prune", 0, "keep only the newest N builds")
}
