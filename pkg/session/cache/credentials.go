package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/reels/pkg/cryptox"
	"github.com/aussiebroadwan/reels/pkg/session/domain"
)

// Credentials is the authToken/userInfo pair kept in a Store. The two
// entries are only ever removed together.
type Credentials struct {
	store  Store
	sealer *cryptox.Sealer
	logger *slog.Logger
}

// NewCredentials wraps store. When sealer is non-nil the token is encrypted
// at rest.
func NewCredentials(store Store, sealer *cryptox.Sealer, logger *slog.Logger) *Credentials {
	if logger == nil {
		logger = slog.Default()
	}
	return &Credentials{store: store, sealer: sealer, logger: logger}
}

// Load reads the cached token and snapshot. Either may be absent. A value
// that cannot be decoded is reported as absent.
func (c *Credentials) Load(ctx context.Context) (string, *domain.ProfileSnapshot, error) {
	token, err := c.loadToken(ctx)
	if err != nil {
		return "", nil, err
	}

	raw, ok, err := c.store.Get(ctx, KeyUserInfo)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", KeyUserInfo, err)
	}
	if !ok {
		return token, nil, nil
	}

	var snap domain.ProfileSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		c.logger.Warn("discarding unreadable profile snapshot", "err", err)
		return token, nil, nil
	}
	return token, &snap, nil
}

func (c *Credentials) loadToken(ctx context.Context) (string, error) {
	raw, ok, err := c.store.Get(ctx, KeyAuthToken)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", KeyAuthToken, err)
	}
	if !ok || raw == "" {
		return "", nil
	}
	if c.sealer == nil {
		return raw, nil
	}

	plain, err := c.sealer.Open(raw)
	if err != nil {
		c.logger.Warn("discarding unreadable auth token", "err", err)
		return "", nil
	}
	return string(plain), nil
}

// SaveSnapshot overwrites the cached snapshot, leaving the token untouched.
func (c *Credentials) SaveSnapshot(ctx context.Context, snap domain.ProfileSnapshot) error {
	buf, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := c.store.SetMany(ctx, map[string]string{KeyUserInfo: string(buf)}); err != nil {
		return fmt.Errorf("write %s: %w", KeyUserInfo, err)
	}
	return nil
}

// Save writes the token and snapshot in one atomic write.
func (c *Credentials) Save(ctx context.Context, token string, snap domain.ProfileSnapshot) error {
	buf, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	stored := token
	if c.sealer != nil {
		if stored, err = c.sealer.Seal([]byte(token)); err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
	}

	err = c.store.SetMany(ctx, map[string]string{
		KeyAuthToken: stored,
		KeyUserInfo:  string(buf),
	})
	if err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Purge removes both the token and the snapshot.
func (c *Credentials) Purge(ctx context.Context) error {
	if err := c.store.Remove(ctx, KeyAuthToken, KeyUserInfo); err != nil {
		return fmt.Errorf("purge credentials: %w", err)
	}
	return nil
}
