package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/reels/internal/profile/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Sub-repositories are exposed as
// methods so a transaction can hand out the same repos bound to the tx.
type Store interface {
	Users() Users
	RevokedTokens() RevokedTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error, the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail and GetUserByPhone are used for duplicate detection on
	// registration.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByPhone(ctx context.Context, phone string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID). A
	// duplicate email or phone fails with ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile sets name, date of birth and gender, marks the profile
	// complete and bumps updated_at.
	UpdateProfile(ctx context.Context, userID, name, dateOfBirth, gender string) error
}

type RevokedTokens interface {
	// RevokeToken records jti as revoked. Revoking twice is not an error.
	RevokeToken(ctx context.Context, t domain.RevokedToken) error

	IsRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpiredRevokedTokens is housekeeping. It returns the number of
	// rows removed.
	DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error)
}
