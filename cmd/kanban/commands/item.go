package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
	"github.com/spf13/cobra"
)

func newItemCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Add, move or delete items",
	}

	addCmd := &cobra.Command{
		Use:   "add <column> [text...]",
		Short: "Append items to a column",
		Long: `Append items to the end of a column.

Each text argument becomes one item. With no text, or with "-", lines are
read from stdin and each non-blank line becomes one item. Text is trimmed;
blank input adds nothing.`,
		Example: `  kanban item add 1 "buy milk" "call mum"
  cat todo.txt | kanban item add 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				colID, err := a.column(args[0])
				if err != nil {
					return err
				}

				texts := args[1:]
				var raw string
				if len(texts) == 0 || (len(texts) == 1 && texts[0] == "-") {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("failed to read stdin: %w", err)
					}
					raw = string(data)
				} else {
					raw = strings.Join(texts, "\n")
				}

				ids := a.editor.AddItems(colID, raw)
				if len(ids) == 0 {
					a.out.Warning("Nothing to add: the input was blank\n")
					return nil
				}
				a.out.Success("Added %d item(s) to column %s\n", len(ids), colID)
				return nil
			})
		},
	}

	var dir string
	mvCmd := &cobra.Command{
		Use:     "mv <item>",
		Aliases: []string{"move"},
		Short:   "Move an item to the neighbouring column",
		Long: `Move an item to the end of the column to its left or right.

Moving left from the first column or right from the last one does nothing.`,
		Example: `  kanban item mv 1.2 --dir right`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				d, err := board.ParseSide(dir)
				if err != nil {
					return a.out.Error("invalid direction", err.Error(), nil)
				}
				itemID, colID, err := a.item(args[0])
				if err != nil {
					return err
				}
				if !a.editor.MoveItem(itemID, colID, d) {
					a.out.Warning("Item %s is already in the %s-most column\n", itemID, d)
					return nil
				}
				a.out.Success("Moved item %s %s\n", itemID, d)
				return nil
			})
		},
	}
	mvCmd.Flags().StringVarP(&dir, "dir", "d", string(board.Right), "Direction: left or right")

	rmCmd := &cobra.Command{
		Use:     "rm <item>",
		Aliases: []string{"delete", "done"},
		Short:   "Delete an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				itemID, colID, err := a.item(args[0])
				if err != nil {
					return err
				}
				a.editor.DeleteItem(itemID, colID)
				a.out.Success("Deleted item %s\n", itemID)
				return nil
			})
		},
	}

	cmd.AddCommand(addCmd, mvCmd, rmCmd)
	return cmd
}
