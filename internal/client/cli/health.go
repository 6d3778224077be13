package cli

import (
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/reels/internal/client/app"
)

func newHealthCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the profile service readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(cmd, open, func(sh *app.Shell) error {
				health, err := sh.Profiles.GetReadiness(cmd.Context())
				if err != nil {
					return err
				}

				rows := [][]string{
					{"Service", sh.Config.ProfileURL},
					{"Status", health.Status},
					{"Version", orDash(health.Version)},
					{"Uptime", orDash(health.Uptime)},
				}
				if health.Checks != nil {
					rows = append(rows,
						[]string{"Database", health.Checks.Database},
						[]string{"Signer", health.Checks.Signer},
					)
				}
				return newPrinter(cmd.OutOrStdout()).Table([]string{"Check", "Result"}, rows)
			})
		},
	}
}
