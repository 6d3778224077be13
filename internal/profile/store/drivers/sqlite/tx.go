package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/reels/internal/profile/store"
)

// ErrNestedTx is returned when a transaction is started from inside one.
var ErrNestedTx = errors.New("sqlite: nested transactions are not supported")

// txStore hands out the same repositories bound to a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Users() store.Users                 { return &usersRepo{q: t.tx} }
func (t *txStore) RevokedTokens() store.RevokedTokens { return &revokedTokensRepo{q: t.tx} }

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, ErrNestedTx }

// WithTx runs fn inside the enclosing transaction; commit and rollback stay
// with whoever opened it.
func (t *txStore) WithTx(_ context.Context, fn func(tx store.Tx) error) error {
	return fn(t)
}

// The connection is owned by the parent Store; these are no-ops.
func (t *txStore) ApplyMigrations() error     { return nil }
func (t *txStore) Ping(context.Context) error { return nil }
func (t *txStore) Close() error               { return nil }

var _ store.Tx = (*txStore)(nil)
