// Package cli is the reelsctl command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/reels/internal/client/app"
	"github.com/aussiebroadwan/reels/pkg/session/route"
)

// Opener builds the session shell for one command invocation.
type Opener func(ctx context.Context, nav route.Navigator) (*app.Shell, error)

// DefaultOpener loads the configuration from the environment.
func DefaultOpener(ctx context.Context, nav route.Navigator) (*app.Shell, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, cfg, nav)
}

// NewRootCommand returns reelsctl with every subcommand attached.
func NewRootCommand(open Opener) *cobra.Command {
	var noColor bool

	root := &cobra.Command{
		Use:   "reelsctl",
		Short: "Inspect and drive the reels session",
		Long: `reelsctl runs the session bootstrap the app performs on launch and the
registration and logout flows, against the configured cache, identity
provider and profile service.

Example usage:
  reelsctl signin kratos --session-token <token>
  reelsctl resolve
  reelsctl register --name "Jo Bloggs" --dob 1990-05-17 --gender female
  reelsctl status
  reelsctl logout`,
		Version:       app.BuildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	root.AddCommand(
		newResolveCommand(open),
		newRegisterCommand(open),
		newLogoutCommand(open),
		newStatusCommand(open),
		newSignInCommand(open),
		newHealthCommand(open),
	)
	return root
}

// withShell opens a shell whose navigation is printed to the command
// output, runs fn and closes the shell.
func withShell(cmd *cobra.Command, open Opener, fn func(sh *app.Shell) error) error {
	out := newPrinter(cmd.OutOrStdout())
	sh, err := open(cmd.Context(), route.NavigatorFunc(out.Route))
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if err := sh.Close(); err != nil {
			sh.Logger.Warn("closing cache", "err", err)
		}
	}()
	return fn(sh)
}
