package cli

import (
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/reels/internal/client/app"
)

func newLogoutCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out everywhere and clear the cached credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(cmd, open, func(sh *app.Shell) error {
				if err := sh.Reconciler.Logout(cmd.Context()); err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).Success("logged out")
				return nil
			})
		},
	}
}
