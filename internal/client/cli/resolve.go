package cli

import (
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/reels/internal/client/app"
)

func newResolveCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Run session bootstrap and print the decision",
		Long: `Reconciles the identity session, the cached token and the profile service
exactly as the app does on launch, then prints the resulting decision and
the screen the app would show.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(cmd, open, func(sh *app.Shell) error {
				d, err := sh.Reconciler.ResolveSession(cmd.Context())
				if err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).Decision(d)
				return nil
			})
		},
	}
}
