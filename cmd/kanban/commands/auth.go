package commands

import (
	"errors"
	"time"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/session"
	"github.com/spf13/cobra"
)

func newAuthCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the identity boards are saved under",
	}

	var token, identity string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Store credentials and load the remote board",
		Long: `Store credentials in the data directory and start a session.

The identity is taken from --identity, or else from the token's sub, uid
or user_id claim. If a board is stored for the identity it replaces the
local one; otherwise the local board is kept and saved on the next change.

KANBAN_TOKEN, when set, takes precedence over stored credentials.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				creds, err := a.sessions.Login(token, identity)
				if err != nil {
					return a.out.Error("login failed", err.Error(),
						[]string{"Pass a JWT with --token", "Pass an identity with --identity"})
				}
				a.identity = creds.Identity
				a.out.Success("Logged in as %s\n", creds.Identity)

				if a.bridge == nil {
					a.out.Muted("Remote storage is disabled; the board stays local.\n")
					return nil
				}
				found, err := a.editor.SignIn(cmd.Context(), creds.Identity)
				switch {
				case err != nil:
					a.out.Warning("Could not load the stored board: %v\n", err)
				case found:
					a.out.Info("Loaded the stored board.\n")
				default:
					a.out.Info("No stored board yet; the local board will be saved on the next change.\n")
				}
				return nil
			})
		},
	}
	loginCmd.Flags().StringVarP(&token, "token", "t", "", "Bearer token (JWT)")
	loginCmd.Flags().StringVarP(&identity, "identity", "i", "", "Identity to save the board under")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget credentials and reset the local board",
		Long: `Forget the stored credentials and end the session. The local board is
reset to a single empty column; the stored board is left as last saved and
comes back on the next login.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				if err := a.sessions.Logout(); err != nil {
					return a.out.Error("logout failed", err.Error(), nil)
				}
				wasOnline := a.editor.Online()
				a.editor.SignOut()
				a.out.Success("Logged out\n")
				if wasOnline {
					a.out.Muted("The local board was reset; log in again to get it back.\n")
				}
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(a *app) error {
				creds, err := a.sessions.Current()
				if errors.Is(err, session.ErrNotLoggedIn) {
					a.out.Info("Not logged in\n")
					return nil
				}
				if err != nil {
					return a.out.Error("invalid credentials", err.Error(), []string{"Log in again:\n  kanban auth login"})
				}

				a.out.Info("Identity:  %s\n", creds.Identity)
				a.out.Info("Source:    %s\n", creds.Source)
				if creds.ExpiresAt != nil {
					state := "valid"
					if creds.Expired(time.Now()) {
						state = "expired"
					}
					a.out.Info("Expires:   %s (%s)\n", creds.ExpiresAt.Local().Format(time.RFC3339), state)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(loginCmd, logoutCmd, statusCmd)
	return cmd
}
