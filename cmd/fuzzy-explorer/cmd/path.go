package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/brianly1003/fuzzy-explorer/internal/actions"
	"github.com/brianly1003/fuzzy-explorer/internal/app"
	"github.com/brianly1003/fuzzy-explorer/internal/commands"
	"github.com/spf13/cobra"
)

var (
	pathRel  string
	pathFrom string
	pathCopy bool

	openExternal bool
	openReveal   bool
	openSplit    string
)

var pathCmd = &cobra.Command{
	Use:   "path <item>",
	Short: "Print or copy an item path",
	Long: `Transform an item path with the configured separator and print it, or
copy it to the clipboard with --copy.

  --rel a   absolute path (default)
  --rel r   relative to the directory of --from
  --rel n   file name only`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			item, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			if pathRel == "r" && pathFrom == "" {
				return fmt.Errorf("--rel r needs --from")
			}

			id := "select-list:insert-" + pathRel
			if pathCopy {
				id = "select-list:copy-" + pathRel
			}
			params := commands.Params{Item: item, Editor: &commands.EditorParams{}}
			if pathFrom != "" {
				if params.Editor.Path, err = filepath.Abs(pathFrom); err != nil {
					return err
				}
			}

			res, err := dispatch(cmd, a, id, params)
			if err != nil {
				return err
			}
			fmt.Println(res.(commands.PathResult).Text)
			return nil
		})
	},
}

var openCmd = &cobra.Command{
	Use:   "open <item>",
	Short: "Open an item",
	Long: `Open a file in $VISUAL or $EDITOR. A directory prints the query that
narrows the list to its contents instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			item, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			params := commands.Params{Item: item}

			switch {
			case openExternal:
				_, err = dispatch(cmd, a, commands.OpenExternally, params)
			case openReveal:
				_, err = dispatch(cmd, a, commands.ShowInFolder, params)
			case openSplit != "":
				_, err = dispatch(cmd, a, "select-list:split-"+openSplit, params)
			default:
				var res interface{}
				res, err = dispatch(cmd, a, commands.Open, params)
				if err == nil {
					if q := res.(actions.OpenResult).Query; q != "" {
						fmt.Println(q)
					}
				}
			}
			return err
		})
	},
}

func dispatch(cmd *cobra.Command, a *app.App, id string, params commands.Params) (interface{}, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return a.Commands().Dispatch(cmd.Context(), id, raw)
}

func init() {
	pathCmd.Flags().StringVar(&pathRel, "rel", "a", "path form: a (absolute), r (relative to --from), n (name)")
	pathCmd.Flags().StringVar(&pathFrom, "from", "", "file that relative paths are computed from")
	pathCmd.Flags().BoolVar(&pathCopy, "copy", false, "copy to the clipboard instead of printing")

	openCmd.Flags().BoolVar(&openExternal, "external", false, "open with the system default application")
	openCmd.Flags().BoolVar(&openReveal, "reveal", false, "reveal in the file manager")
	openCmd.Flags().StringVar(&openSplit, "split", "", "open in a split pane: left, right, up or down")
}
