package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/printer"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/transfer"
	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board to a dated JSON file",
		Long: `Write the board to kanban-export-YYYY-MM-DD.json in --dir.

A board that still has only its single empty column is not exported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				snapshot, err := a.editor.Export()
				if errors.Is(err, transfer.ErrNothingToExport) {
					a.out.Info("%s\n", printer.NothingToExport)
					return nil
				}
				if err != nil {
					return err
				}

				path, err := transfer.WriteFile(dir, snapshot, time.Now())
				if err != nil {
					return a.out.Error("export failed", err.Error(), nil)
				}
				a.out.Success("%s\n", printer.ExportSuccess)
				a.out.Muted("%s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the export into")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the board with an exported JSON file",
		Long: `Replace the whole board with the columns of an exported file.

The file is checked before anything changes: it must hold a non-empty
"columns" array whose columns have a string "id" and a "tasks" array of
items with string "id" and "text". Any problem rejects the whole file.
While logged in, the imported board is saved remotely right away.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return a.out.Error("import failed", fmt.Sprintf("Could not read %s: %v", args[0], err), nil)
				}

				if err := a.editor.Import(data); err != nil {
					if errors.Is(err, transfer.ErrInvalidFormat) {
						return a.out.Error(printer.ImportError, err.Error(), nil)
					}
					return err
				}
				a.out.Success("%s\n", printer.ImportSuccess)
				return nil
			})
		},
	}
}
