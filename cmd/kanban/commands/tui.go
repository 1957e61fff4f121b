package commands

import (
	"errors"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/tui"
	"github.com/spf13/cobra"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Edit the board interactively",
		Long: `Open the interactive board.

Keys:
  ←/→ h/l   select column        ↑/↓ k/j   select item
  H / L     move item left/right a         add items
  [ / ]     new column left/right d         delete item
  D         delete column        y         copy column
  s         save now             q         quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				if err := tui.Run(a.editor); err != nil {
					if errors.Is(err, tui.ErrNoTerminal) {
						return a.out.Error("no terminal", err.Error(), []string{"Use 'kanban show' and the column/item commands instead"})
					}
					return err
				}
				return nil
			})
		},
	}
}
