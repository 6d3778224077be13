package app

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Cache drivers.
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

// Identity providers.
const (
	IdentityNone   = "none"
	IdentityKratos = "kratos"
	IdentityOIDC   = "oidc"
)

// Config holds the client shell settings, read from the environment.
type Config struct {
	ProfileURL string `env:"REELS_PROFILE_URL" envDefault:"http://localhost:8080"`

	CacheDriver string `env:"REELS_CACHE_DRIVER" envDefault:"sqlite"`
	CacheFile   string `env:"REELS_CACHE_FILE" envDefault:"reels-session.db"`
	RedisURL    string `env:"REELS_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisPrefix string `env:"REELS_REDIS_PREFIX"`
	// SealKeyFile holds the key material for encrypting the cached token.
	// It is created on first use. Empty stores the token in the clear.
	SealKeyFile string `env:"REELS_SEAL_KEY_FILE"`

	Identity         string        `env:"REELS_IDENTITY" envDefault:"none"`
	KratosURL        string        `env:"REELS_KRATOS_URL"`
	IdentityTimeout  time.Duration `env:"REELS_IDENTITY_TIMEOUT" envDefault:"10s"`
	OIDCIssuer       string        `env:"REELS_OIDC_ISSUER"`
	OIDCClientID     string        `env:"REELS_OIDC_CLIENT_ID"`
	OIDCClientSecret string        `env:"REELS_OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string        `env:"REELS_OIDC_REDIRECT_URL" envDefault:"http://localhost:8085/callback"`
	OIDCScopes       []string      `env:"REELS_OIDC_SCOPES" envSeparator:","`

	PhonePrefix string `env:"REELS_PHONE_PREFIX" envDefault:"+91"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadConfig loads .env when present and parses the environment on top.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks driver names and the settings each of them needs.
func (c Config) Validate() error {
	if c.ProfileURL == "" {
		return errors.New("REELS_PROFILE_URL must not be empty")
	}

	switch c.CacheDriver {
	case CacheSQLite:
		if c.CacheFile == "" {
			return errors.New("REELS_CACHE_FILE must not be empty for the sqlite cache")
		}
	case CacheRedis:
		if c.RedisURL == "" {
			return errors.New("REELS_REDIS_URL must not be empty for the redis cache")
		}
	case CacheMemory:
	default:
		return fmt.Errorf("unknown cache driver %q", c.CacheDriver)
	}

	switch c.Identity {
	case IdentityNone:
	case IdentityKratos:
		if c.KratosURL == "" {
			return errors.New("REELS_KRATOS_URL is required for the kratos identity provider")
		}
	case IdentityOIDC:
		if c.OIDCIssuer == "" || c.OIDCClientID == "" {
			return errors.New("REELS_OIDC_ISSUER and REELS_OIDC_CLIENT_ID are required for the oidc identity provider")
		}
	default:
		return fmt.Errorf("unknown identity provider %q", c.Identity)
	}

	return nil
}
