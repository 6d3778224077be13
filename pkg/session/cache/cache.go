// Package cache defines the durable key/value store that backs the local
// session state, and the Credentials view the reconciler works through.
package cache

import (
	"context"
	"errors"
)

// Keys of the entries persisted on the device.
const (
	KeyAuthToken       = "authToken"
	KeyUserInfo        = "userInfo"
	KeyIdentitySession = "identitySession"
)

var ErrClosed = errors.New("cache: closed")

// Store is a durable string key/value store. Concrete drivers (sqlite, redis,
// memory) implement this.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetMany writes every entry or none of them.
	SetMany(ctx context.Context, entries map[string]string) error

	// Remove deletes every key or none of them. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error

	// Close releases any underlying resources.
	Close() error
}
