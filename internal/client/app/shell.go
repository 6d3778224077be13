// Package app wires the session reconciler to the configured cache,
// identity provider and profile service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/reels/pkg/cryptox"
	"github.com/aussiebroadwan/reels/pkg/profilesdk"
	"github.com/aussiebroadwan/reels/pkg/session"
	"github.com/aussiebroadwan/reels/pkg/session/cache"
	"github.com/aussiebroadwan/reels/pkg/session/cache/drivers/memory"
	"github.com/aussiebroadwan/reels/pkg/session/cache/drivers/redis"
	"github.com/aussiebroadwan/reels/pkg/session/cache/drivers/sqlite"
	"github.com/aussiebroadwan/reels/pkg/session/identity"
	"github.com/aussiebroadwan/reels/pkg/session/identity/kratos"
	"github.com/aussiebroadwan/reels/pkg/session/identity/oidc"
	"github.com/aussiebroadwan/reels/pkg/session/route"
	"github.com/aussiebroadwan/reels/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// sealInfo binds the derived sealing key to cached bearer tokens.
const sealInfo = "reels/session/authToken"

// Shell is one process worth of session machinery.
type Shell struct {
	Config Config
	Logger *slog.Logger

	Store       cache.Store
	Credentials *cache.Credentials
	Identity    identity.Provider
	Profiles    *profilesdk.Client
	Reconciler  *session.Reconciler

	// Set when the matching provider is configured.
	Kratos *kratos.Provider
	OIDC   *oidc.Provider
}

// Open builds a Shell. nav receives the navigation resets; nil discards them.
func Open(ctx context.Context, cfg Config, nav route.Navigator) (*Shell, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sh := &Shell{
		Config: cfg,
		Logger: slogx.New(slogx.Config{
			Service: "reelsctl",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  os.Stderr,
		}),
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	sh.Store = store

	sealer, err := openSealer(cfg.SealKeyFile)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	sh.Credentials = cache.NewCredentials(store, sealer, sh.Logger)

	if err := sh.openIdentity(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	sh.Profiles = profilesdk.NewClient(cfg.ProfileURL, sh.Logger)

	sh.Reconciler, err = session.New(session.Config{
		Identity:    sh.Identity,
		Credentials: sh.Credentials,
		Profiles:    sh.Profiles,
		Navigator:   nav,
		Logger:      sh.Logger,
		PhonePrefix: cfg.PhonePrefix,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return sh, nil
}

// Close releases the cache store.
func (sh *Shell) Close() error {
	return sh.Store.Close()
}

func openStore(ctx context.Context, cfg Config) (cache.Store, error) {
	switch cfg.CacheDriver {
	case CacheSQLite:
		st, err := sqlite.NewStore(cfg.CacheFile)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		return st, nil
	case CacheRedis:
		st, err := redis.Open(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return st, nil
	case CacheMemory:
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown cache driver %q", cfg.CacheDriver)
}

func (sh *Shell) openIdentity(ctx context.Context) error {
	cfg := sh.Config
	switch cfg.Identity {
	case IdentityKratos:
		sh.Kratos = kratos.New(cfg.KratosURL, sh.Store, cfg.IdentityTimeout, sh.Logger)
		sh.Identity = sh.Kratos
	case IdentityOIDC:
		p, err := oidc.New(ctx, oidc.Config{
			Issuer:       cfg.OIDCIssuer,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
			Scopes:       cfg.OIDCScopes,
		}, sh.Store, sh.Logger)
		if err != nil {
			return err
		}
		sh.OIDC = p
		sh.Identity = p
	default:
		sh.Identity = identity.None{}
	}
	return nil
}

// openSealer reads key material from path, creating it on first use.
func openSealer(path string) (*cryptox.Sealer, error) {
	if path == "" {
		return nil, nil
	}

	material, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		var token string
		token, err = cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, err
		}
		material = []byte(token)
		err = os.WriteFile(path, material, 0o600)
	}
	if err != nil {
		return nil, fmt.Errorf("seal key: %w", err)
	}

	return cryptox.NewSealer(material, sealInfo)
}
