package app

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the profile service settings, read from the environment.
type Config struct {
	Issuer   string   `env:"PROFILE_ISSUER" envDefault:"reels-profile"`
	Audience []string `env:"PROFILE_AUDIENCE" envSeparator:","`
	KeyFile  string   `env:"PROFILE_KEY_FILE"` // empty: ephemeral key, tokens die with the process
	KeyID    string   `env:"PROFILE_KEY_ID"`   // empty: derived from the public key

	TokenTTL     time.Duration `env:"PROFILE_TOKEN_TTL" envDefault:"720h"`
	DatabaseFile string        `env:"PROFILE_DATABASE_FILE" envDefault:"profile.db"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
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
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Issuer == "":
		return errors.New("PROFILE_ISSUER must not be empty")
	case c.TokenTTL <= 0:
		return errors.New("PROFILE_TOKEN_TTL must be positive")
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("PORT %d out of range", c.Port)
	}
	return nil
}
