package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/reels/internal/client/app"
	"github.com/aussiebroadwan/reels/pkg/cryptox"
)

func newStatusCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the identity session and cached credentials",
		Long: `Shows what the device currently holds without calling the profile
service. The bearer token is shown as a fingerprint only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(cmd, open, func(sh *app.Shell) error {
				ctx := cmd.Context()

				identityState := "absent"
				idSession, err := sh.Identity.CurrentSession(ctx)
				switch {
				case err != nil:
					identityState = fmt.Sprintf("unavailable (%v)", err)
				case idSession != nil:
					identityState = "present (" + orDash(idSession.Email) + ")"
				}

				token, snap, err := sh.Credentials.Load(ctx)
				if err != nil {
					return fmt.Errorf("read cache: %w", err)
				}

				rows := [][]string{
					{"Identity provider", sh.Config.Identity},
					{"Identity session", identityState},
					{"Cache", sh.Config.CacheDriver},
					{"Auth token", orDash(cryptox.FingerprintToken(token))},
				}
				if snap == nil {
					rows = append(rows, []string{"Profile snapshot", "-"})
				} else {
					rows = append(rows,
						[]string{"Email", orDash(snap.Email)},
						[]string{"Display name", orDash(snap.DisplayName)},
						[]string{"Registration complete", yesNo(snap.RegistrationComplete)},
					)
				}

				return newPrinter(cmd.OutOrStdout()).Table([]string{"Field", "Value"}, rows)
			})
		},
	}
}
