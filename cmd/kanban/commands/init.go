package commands

import (
	"fmt"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/config"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/printer"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/scaffold"
	"github.com/spf13/cobra"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default kanban.yml",
		Long: `Write a kanban.yml with the default settings to the --config path
(./kanban.yml when not given).

Use --force to overwrite an existing file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
			path := opts.configPath
			if path == "" {
				path = config.DefaultPath
			}

			if err := scaffold.Initialize(path, force); err != nil {
				return out.Error("initialization failed", err.Error(), nil)
			}
			out.Success("Created %s\n", path)
			out.Info("\nNext steps:\n")
			out.Info("  1. Point remote.url at your Redis server\n")
			out.Info("  2. Log in: kanban auth login --token <jwt>\n")
			out.Info("  3. Add work: kanban item add 1 \"first task\"\n")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, fmt.Sprintf("Overwrite an existing %s", config.DefaultPath))
	return cmd
}
