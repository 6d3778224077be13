package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/reels/internal/client/app"
	"github.com/aussiebroadwan/reels/pkg/session"
	"github.com/aussiebroadwan/reels/pkg/session/domain"
)

func newRegisterCommand(open Opener) *cobra.Command {
	var (
		name   string
		dob    string
		gender string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Complete the profile (name, date of birth, gender)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := session.RegistrationInput{
				Name:   name,
				Gender: domain.Gender(gender),
			}
			if dob != "" {
				t, err := time.Parse(domain.DateLayout, dob)
				if err != nil {
					return fmt.Errorf("--dob must be YYYY-MM-DD: %w", err)
				}
				in.DateOfBirth = t
			}

			return withShell(cmd, open, func(sh *app.Shell) error {
				profile, err := sh.Reconciler.CompleteRegistration(cmd.Context(), in)
				if err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).Success("registration complete for %s (%s)",
					orDash(profile.Name), profile.Gender.Label())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&dob, "dob", "", "date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&gender, "gender", "", "one of "+genderChoices())
	return cmd
}

// genderChoices renders the accepted --gender values with their labels.
func genderChoices() string {
	choices := make([]string, 0, len(domain.Genders))
	for _, g := range domain.Genders {
		choices = append(choices, fmt.Sprintf("%s (%s)", g, g.Label()))
	}
	return strings.Join(choices, ", ")
}
