package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionString = "dev"

// rootOptions holds the global flags.
type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "kanban",
		Short: "Kanban - a column board in your terminal",
		Long: `Kanban keeps an ordered set of columns, each holding short text items.

The board lives in a local working copy. While logged in, every change is
also saved to a Redis-backed store under your identity, so the same board
follows you to other machines.

Columns and items are referenced by position ("2", "2.1"), by full id, or
by an id prefix of at least 4 characters, as shown by 'kanban show'.`,
		Version: versionString,
		// Prevent silent success when unknown flags are passed to root command
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
		SilenceErrors:      true,
		SilenceUsage:       true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to kanban.yml (default ./kanban.yml, built-in defaults when absent)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newInitCmd(opts),
		newShowCmd(opts),
		newColumnCmd(opts),
		newItemCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newSaveCmd(opts),
		newSyncCmd(opts),
		newStatusCmd(opts),
		newAuthCmd(opts),
		newTUICmd(opts),
	)
	return rootCmd
}

// Execute runs the command tree. This is called by main.main().
func Execute() error {
	return NewRootCmd().Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	versionString = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
