package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/reels/internal/client/app"
	"github.com/aussiebroadwan/reels/pkg/cryptox"
	"github.com/aussiebroadwan/reels/pkg/session/domain"
)

func newSignInCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Establish an identity session",
	}
	cmd.AddCommand(newKratosSignInCommand(open), newOIDCSignInCommand(open))
	return cmd
}

func newKratosSignInCommand(open Opener) *cobra.Command {
	var sessionToken string

	cmd := &cobra.Command{
		Use:   "kratos",
		Short: "Adopt a Kratos native session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(cmd, open, func(sh *app.Shell) error {
				if sh.Kratos == nil {
					return errors.New("REELS_IDENTITY is not kratos")
				}
				sess, err := sh.Kratos.SignIn(cmd.Context(), sessionToken)
				if err != nil {
					return err
				}
				printSignedIn(cmd, sess)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sessionToken, "session-token", "", "session token from a completed login or registration flow")
	_ = cmd.MarkFlagRequired("session-token")
	return cmd
}

func newOIDCSignInCommand(open Opener) *cobra.Command {
	var code, verifier string

	cmd := &cobra.Command{
		Use:   "oidc",
		Short: "Sign in through the OpenID Connect authorization code flow",
		Long: `Without --code, prints the authorization URL and the PKCE verifier to
pass back. With --code and --verifier, redeems the code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(cmd, open, func(sh *app.Shell) error {
				if sh.OIDC == nil {
					return errors.New("REELS_IDENTITY is not oidc")
				}
				out := newPrinter(cmd.OutOrStdout())

				if code == "" {
					state, err := cryptox.GenerateToken(16)
					if err != nil {
						return err
					}
					url, pkce := sh.OIDC.AuthCodeURL(state)
					out.Info("open: %s", url)
					out.Info("then: reelsctl signin oidc --code <code> --verifier %s", pkce)
					return nil
				}
				if verifier == "" {
					return errors.New("--verifier is required with --code")
				}

				sess, err := sh.OIDC.Exchange(cmd.Context(), code, verifier)
				if err != nil {
					return err
				}
				printSignedIn(cmd, sess)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "authorization code from the redirect")
	cmd.Flags().StringVar(&verifier, "verifier", "", "PKCE verifier printed by the first step")
	return cmd
}

func printSignedIn(cmd *cobra.Command, sess *domain.IdentitySession) {
	newPrinter(cmd.OutOrStdout()).Success("signed in as %s", orDash(sess.Email))
}
