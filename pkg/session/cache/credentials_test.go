package cache_test

import (
	"testing"

	"github.com/aussiebroadwan/reels/pkg/cryptox"
	"github.com/aussiebroadwan/reels/pkg/session/cache"
	"github.com/aussiebroadwan/reels/pkg/session/cache/drivers/memory"
	"github.com/aussiebroadwan/reels/pkg/session/domain"
	"github.com/aussiebroadwan/reels/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestCredentialsRoundTrip(t *testing.T) {
	store := memory.New()
	creds := cache.NewCredentials(store, nil, slogx.Discard())

	token, snap, err := creds.Load(t.Context())
	require.NoError(t, err)
	require.Empty(t, token)
	require.Nil(t, snap)

	want := domain.ProfileSnapshot{Email: "jo@example.com", DisplayName: "Jo", RegistrationComplete: true}
	require.NoError(t, creds.Save(t.Context(), "tok-1", want))

	token, snap, err = creds.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, "tok-1", token)
	require.Equal(t, &want, snap)

	raw, ok, err := store.Get(t.Context(), cache.KeyUserInfo)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"email":"jo@example.com","displayName":"Jo","registrationComplete":true}`, raw)

	require.NoError(t, creds.Purge(t.Context()))
	require.Zero(t, store.Len())
}

func TestCredentialsSaveSnapshotKeepsToken(t *testing.T) {
	creds := cache.NewCredentials(memory.New(), nil, slogx.Discard())
	require.NoError(t, creds.Save(t.Context(), "tok-1", domain.ProfileSnapshot{}))
	require.NoError(t, creds.SaveSnapshot(t.Context(), domain.ProfileSnapshot{DisplayName: "Jo"}))

	token, snap, err := creds.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, "tok-1", token)
	require.Equal(t, "Jo", snap.DisplayName)
}

func TestCredentialsCorruptSnapshotIsAbsent(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.SetMany(t.Context(), map[string]string{
		cache.KeyAuthToken: "tok-1",
		cache.KeyUserInfo:  "{not json",
	}))

	token, snap, err := cache.NewCredentials(store, nil, slogx.Discard()).Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, "tok-1", token)
	require.Nil(t, snap)
}

func TestCredentialsSealedToken(t *testing.T) {
	sealer, err := cryptox.NewSealer([]byte("device-secret"), "reels/auth-token")
	require.NoError(t, err)

	store := memory.New()
	creds := cache.NewCredentials(store, sealer, slogx.Discard())
	require.NoError(t, creds.Save(t.Context(), "tok-1", domain.ProfileSnapshot{}))

	raw, _, err := store.Get(t.Context(), cache.KeyAuthToken)
	require.NoError(t, err)
	require.NotEqual(t, "tok-1", raw)

	token, _, err := creds.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, "tok-1", token)

	other, err := cryptox.NewSealer([]byte("another-secret"), "reels/auth-token")
	require.NoError(t, err)
	token, _, err = cache.NewCredentials(store, other, slogx.Discard()).Load(t.Context())
	require.NoError(t, err)
	require.Empty(t, token, "a token sealed under another key reads as absent")
}

func TestCredentialsClosedStore(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.Close())

	_, _, err := cache.NewCredentials(store, nil, slogx.Discard()).Load(t.Context())
	require.ErrorIs(t, err, cache.ErrClosed)
}
