// Package redis is a cache.Store shared between processes through Redis.
package redis

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/aussiebroadwan/reels/pkg/session/cache"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this driver.
const DefaultPrefix = "reels:session:"

type Store struct {
	rdb    redis.UniversalClient
	prefix string
	closed atomic.Bool
}

// New wraps an existing client. An empty prefix uses DefaultPrefix.
func New(rdb redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

// Open connects using a redis:// URL.
func Open(ctx context.Context, url, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return New(rdb, prefix), nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, cache.ErrClosed
	}

	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetMany issues a single MSET, which Redis applies atomically.
func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	if s.closed.Load() {
		return cache.ErrClosed
	}
	if len(entries) == 0 {
		return nil
	}

	keys := slices.Sorted(maps.Keys(entries))

	pairs := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, s.prefix+k, entries[k])
	}
	return s.rdb.MSet(ctx, pairs...).Err()
}

// Remove issues a single multi-key DEL.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if s.closed.Load() {
		return cache.ErrClosed
	}
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	return s.rdb.Del(ctx, full...).Err()
}

// Ping verifies the connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.rdb.Close()
}

var _ cache.Store = (*Store)(nil)
