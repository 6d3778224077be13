package sqlite_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/reels/internal/profile/domain"
	"github.com/aussiebroadwan/reels/internal/profile/store"
	"github.com/aussiebroadwan/reels/internal/profile/store/drivers/sqlite"
	"github.com/aussiebroadwan/reels/pkg/idx"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.NewStore("file::memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestUsersCreateAndGet(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()

	u := domain.User{
		ID:                   idx.New().String(),
		Name:                 "Jo Bloggs",
		Email:                "Jo@Example.com",
		Phone:                "9876543210",
		DateOfBirth:          "1990-05-17",
		Gender:               "female",
		RegistrationComplete: true,
		IsPhoneVerified:      true,
	}
	require.NoError(t, st.Users().CreateUser(ctx, u))

	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Name, got.Name)
	assert.Equal(t, u.Email, got.Email)
	assert.True(t, got.RegistrationComplete)
	assert.True(t, got.IsPhoneVerified)
	assert.False(t, got.IsEmailVerified)
	assert.False(t, got.CreatedAt.IsZero())

	byEmail, err := st.Users().GetUserByEmail(ctx, "jo@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byPhone, err := st.Users().GetUserByPhone(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byPhone.ID)

	_, err = st.Users().GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Users().GetUserByEmail(ctx, "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersDuplicateContact(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()

	require.NoError(t, st.Users().CreateUser(ctx, domain.User{ID: idx.New().String(), Email: "jo@example.com"}))
	require.NoError(t, st.Users().CreateUser(ctx, domain.User{ID: idx.New().String(), Phone: "9876543210"}))

	err := st.Users().CreateUser(ctx, domain.User{ID: idx.New().String(), Email: "JO@example.com"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	err = st.Users().CreateUser(ctx, domain.User{ID: idx.New().String(), Phone: "9876543210"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsersUpdateProfileMarksComplete(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()

	id := idx.New().String()
	require.NoError(t, st.Users().CreateUser(ctx, domain.User{ID: id, Phone: "9876543210"}))
	require.NoError(t, st.Users().UpdateProfile(ctx, id, "Jo", "1990-05-17", "male"))

	got, err := st.Users().GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jo", got.Name)
	assert.Equal(t, "1990-05-17", got.DateOfBirth)
	assert.Equal(t, "male", got.Gender)
	assert.True(t, got.RegistrationComplete)

	err = st.Users().UpdateProfile(ctx, "missing", "Jo", "1990-05-17", "male")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRevokedTokens(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()
	now := time.Now()

	id := idx.New().String()
	require.NoError(t, st.Users().CreateUser(ctx, domain.User{ID: id, Email: "jo@example.com"}))

	require.NoError(t, st.RevokedTokens().RevokeToken(ctx, domain.RevokedToken{JTI: "old", UserID: id, ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, st.RevokedTokens().RevokeToken(ctx, domain.RevokedToken{JTI: "live", UserID: id, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, st.RevokedTokens().RevokeToken(ctx, domain.RevokedToken{JTI: "live", UserID: id, ExpiresAt: now.Add(time.Hour)}))

	revoked, err := st.RevokedTokens().IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	n, err := st.RevokedTokens().DeleteExpiredRevokedTokens(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	revoked, err = st.RevokedTokens().IsRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestWithTxRollsBack(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()
	id := idx.New().String()
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, domain.User{ID: id, Email: "jo@example.com"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Users().GetUserByID(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNestedWithTxJoinsOuterTransaction(t *testing.T) {
	st := newStore(t)
	ctx := t.Context()
	id := idx.New().String()
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.WithTx(ctx, func(inner store.Tx) error {
			return inner.Users().CreateUser(ctx, domain.User{ID: id, Phone: "9000000000"})
		}); err != nil {
			return err
		}

		_, err := tx.Tx(ctx)
		require.ErrorIs(t, err, sqlite.ErrNestedTx)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Users().GetUserByID(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound, "inner write rolls back with the outer transaction")
}

func TestSchemaVersion(t *testing.T) {
	st, err := sqlite.NewStore("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	version, dirty, err := st.SchemaVersion()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.ApplyMigrations(), "re-applying is a no-op")

	version, dirty, err = st.SchemaVersion()
	require.NoError(t, err)
	assert.EqualValues(t, 2, version)
	assert.False(t, dirty)
}
