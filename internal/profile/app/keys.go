package app

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/reels/pkg/cryptox"
	"github.com/aussiebroadwan/reels/pkg/jwtx"
)

// Keys bundles the token signer with the key set and verifier built from it.
type Keys struct {
	Signer   *jwtx.EdDSASigner
	KeySet   *jwtx.KeySet
	Verifier *jwtx.EdDSAVerifier
}

// InitKeys loads (or generates) the Ed25519 signing key.
//
// With no PROFILE_KEY_FILE the key is generated in memory and every issued
// token becomes invalid on restart.
func InitKeys(cfg Config, logger *slog.Logger) (*Keys, error) {
	pemKey, err := cryptox.LoadOrGenerateEd25519Key(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load signing key: %w", err)
	}

	signer, err := jwtx.NewSignerEdDSA(cfg.KeyID, pemKey)
	if err != nil {
		return nil, err
	}
	if cfg.KeyID == "" {
		signer, err = jwtx.NewSignerEdDSA(keyID(signer.PublicJWK()), pemKey)
		if err != nil {
			return nil, err
		}
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("register signing key: %w", err)
	}

	if cfg.KeyFile == "" {
		logger.Warn("using ephemeral signing key", "kid", signer.KID())
	} else {
		logger.Info("signing key loaded", "kid", signer.KID(), "path", cfg.KeyFile)
	}

	return &Keys{
		Signer:   signer,
		KeySet:   keys,
		Verifier: jwtx.NewVerifierEdDSA(keys, cfg.Issuer, cfg.Audience),
	}, nil
}

// keyID is a short stable identifier for a public key.
func keyID(jwk jwtx.JWK) string {
	sum := sha256.Sum256([]byte(jwk.X))
	return base64.RawURLEncoding.EncodeToString(sum[:8])
}
