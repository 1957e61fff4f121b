package commands

import (
	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
	"github.com/spf13/cobra"
)

func newColumnCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "column",
		Aliases: []string{"col"},
		Short:   "Add, delete or copy columns",
	}

	var side string
	addCmd := &cobra.Command{
		Use:   "add <column>",
		Short: "Insert an empty column next to another",
		Example: `  # New column right of the first one
  kanban column add 1

  # New column left of column 3f2a9c1b
  kanban column add 3f2a --side left`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				s, err := board.ParseSide(side)
				if err != nil {
					return a.out.Error("invalid side", err.Error(), nil)
				}
				anchor, err := a.column(args[0])
				if err != nil {
					return err
				}
				id, _ := a.editor.AddColumn(anchor, s)
				a.out.Success("Added column %s\n", id)
				return nil
			})
		},
	}
	addCmd.Flags().StringVarP(&side, "side", "s", string(board.Right), "Where to insert: left or right")

	rmCmd := &cobra.Command{
		Use:     "rm <column>",
		Aliases: []string{"delete"},
		Short:   "Delete a column",
		Long: `Delete a column together with its items.

The items' text is copied to the clipboard first, one item per line.
The last remaining column cannot be deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				id, err := a.column(args[0])
				if err != nil {
					return err
				}
				col, _ := a.editor.Board().Column(id)
				removed, copied := a.editor.DeleteColumn(id)
				if !removed {
					return a.out.Error("cannot delete the last column", "A board always keeps at least one column.", nil)
				}
				a.out.Success("Deleted column %s\n", id)
				if len(col.Tasks) > 0 && a.cfg.Clipboard.Enabled {
					if copied {
						a.out.Muted("%d items copied to the clipboard\n", len(col.Tasks))
					} else {
						a.out.Warning("%d items could not be copied to the clipboard\n", len(col.Tasks))
					}
				}
				return nil
			})
		},
	}

	copyCmd := &cobra.Command{
		Use:   "copy <column>",
		Short: "Copy a column's items to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				id, err := a.column(args[0])
				if err != nil {
					return err
				}
				if err := a.editor.CopyColumn(id); err != nil {
					return a.out.Error("copy failed", err.Error(), nil)
				}
				a.out.Success("Copied column %s\n", id)
				return nil
			})
		},
	}

	cmd.AddCommand(addCmd, rmCmd, copyCmd)
	return cmd
}
