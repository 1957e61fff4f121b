package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/printer"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/remote"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/watch"
	"github.com/spf13/cobra"
)

// requireSession reports a printed error unless a session is active.
func (a *app) requireSession() error {
	if a.bridge == nil {
		return a.out.Error("remote storage is disabled", "Set remote.enabled: true in kanban.yml to save boards remotely.", nil)
	}
	if !a.editor.Online() {
		return a.out.Error("not logged in", "Remote saves need an identity.", []string{"Log in first:\n  kanban auth login --token <jwt>"})
	}
	return nil
}

func newSaveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Push the board to remote storage now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				if err := a.editor.Save(cmd.Context()); err != nil {
					return a.out.Error(printer.SaveError, err.Error(), nil)
				}
				a.out.Success("%s\n", printer.SaveSuccess)
				return nil
			})
		},
	}
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile with remote storage",
	}

	pullCmd := &cobra.Command{
		Use:   "pull",
		Short: "Replace the local board with the stored one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				found, err := a.editor.Pull(cmd.Context())
				if err != nil {
					return a.out.Error("pull failed", err.Error(), nil)
				}
				if !found {
					a.out.Info("No stored board for %s yet; the local board is kept.\n", a.identity)
					return nil
				}
				a.out.Success("Pulled board for %s\n", a.identity)
				return nil
			})
		},
	}

	var once bool
	var timeout time.Duration
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow saves made on other devices",
		Long: `Keep the local board in step with saves made elsewhere under the same
identity. Each newer stored board replaces the local one and is written to
the working copy. Runs until interrupted.

With --once, wait for a single newer save (up to --timeout) and exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				w := watch.New(a.client, a.identity, a.logger)
				since, err := w.Latest(ctx)
				if err != nil {
					return a.out.Error("watch failed", err.Error(), nil)
				}

				apply := func(record *remote.Record) error {
					if !a.editor.Receive(record.Board) {
						return nil
					}
					if err := a.local.Save(a.editor.Board()); err != nil {
						return a.out.ErrorWithContext("failed to save local board", err.Error(),
							map[string]string{"File": a.local.Path()}, nil)
					}
					columns, items := record.Board.Stats()
					a.out.Success("Board updated (%s): %d columns, %d items\n",
						record.UpdatedAt.Local().Format(time.RFC3339), columns, items)
					return nil
				}

				if once {
					record, err := w.WaitForUpdate(ctx, since, timeout)
					if err != nil {
						return a.out.Error("no update received", err.Error(), nil)
					}
					return apply(record)
				}

				a.out.Step("Watching board of %s (Ctrl+C to stop)\n", a.identity)
				return w.Follow(ctx, since, apply)
			})
		},
	}
	watchCmd.Flags().BoolVar(&once, "once", false, "Exit after the first update")
	watchCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "How long --once waits")

	cmd.AddCommand(pullCmd, watchCmd)
	return cmd
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session, storage and board summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				columns, items := a.editor.Board().Stats()
				a.out.Info("Board:     %d columns, %d items\n", columns, items)
				a.out.Info("Local:     %s\n", a.local.Path())

				if a.bridge == nil {
					a.out.Info("Remote:    disabled\n")
					return nil
				}
				a.out.Info("Remote:    %s (namespace %s)\n", a.cfg.Remote.URL, a.cfg.Remote.Namespace)

				if !a.editor.Online() {
					a.out.Info("Session:   not logged in\n")
					return nil
				}
				a.out.Info("Session:   %s\n", a.identity)

				ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Remote.SaveTimeout)
				defer cancel()
				record, err := a.client.GetRecord(ctx, a.identity)
				switch {
				case remote.IsNotFound(err):
					a.out.Info("Stored:    nothing yet\n")
				case err != nil:
					a.out.Warning("Stored:    unreachable (%v)\n", err)
				default:
					same := record.Board.Equal(a.editor.Board())
					state := "differs from local"
					if same {
						state = "matches local"
					}
					a.out.Info("Stored:    %s, %s\n", record.UpdatedAt.Local().Format(time.RFC3339), state)
				}
				return nil
			})
		},
	}
}
