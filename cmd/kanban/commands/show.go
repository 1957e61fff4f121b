package commands

import (
	"fmt"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/render"
	"github.com/spf13/cobra"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the board",
		Long: `Print the board column by column.

Output Formats:
  table - positions, short ids and item text (default)
  json  - the board as JSON, for scripts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				switch output {
				case "table":
					render.FormatTable(cmd.OutOrStdout(), a.editor.Board())
					return nil
				case "json":
					return render.FormatJSON(cmd.OutOrStdout(), a.editor.Board())
				default:
					return a.out.Error(
						"invalid output format",
						fmt.Sprintf("Unknown format: %s", output),
						[]string{"Valid formats: table, json"},
					)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table or json")
	return cmd
}
