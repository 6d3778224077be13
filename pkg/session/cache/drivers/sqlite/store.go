// Package sqlite is the durable on-device cache.Store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"

	"github.com/aussiebroadwan/reels/pkg/session/cache"
	_ "modernc.org/sqlite"
)

type Store struct {
	db     *sql.DB
	closed atomic.Bool
}

// NewStore opens dsn (a file path or "file::memory:") and applies migrations.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One writer keeps in-memory databases on a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, cache.ErrClosed
	}

	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM entries WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	if s.closed.Load() {
		return cache.ErrClosed
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for k, v := range entries {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
				ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				k, v)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if s.closed.Load() {
		return cache.ErrClosed
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// withTx executes fn within a transaction, committing only if fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

var _ cache.Store = (*Store)(nil)
