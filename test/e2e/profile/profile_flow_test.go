package profile_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/reels/pkg/profilesdk"
)

// TestRegisterUpdateLogoutFlow walks a client through the whole token life
// cycle: register, read, rotate through update-profile, then log out.
func TestRegisterUpdateLogoutFlow(t *testing.T) {
	client := setupProfileContainer(t, relaxedLimits())
	ctx := t.Context()

	registered, err := client.Register(ctx, newRegistration("flow@example.com", "9123456780"))
	require.NoError(t, err)
	require.True(t, registered.User.RegistrationComplete)
	assert.True(t, registered.User.IsPhoneVerified)
	assert.Equal(t, "9123456780", registered.User.Phone)

	user, err := client.GetProfile(ctx, registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, user.ID)

	updated, err := client.UpdateProfile(ctx, registered.Token, profilesdk.UpdateProfileRequest{
		Name:        "Renamed User",
		DateOfBirth: "1992-11-04",
		Gender:      "female",
	})
	require.NoError(t, err)
	require.NotEqual(t, registered.Token, updated.Token, "update-profile rotates the token")
	assert.Equal(t, "Renamed User", updated.User.Name)
	assert.Equal(t, "1992-11-04", updated.User.DateOfBirth)

	_, err = client.GetProfile(ctx, registered.Token)
	assertStatus(t, err, http.StatusUnauthorized)

	require.NoError(t, client.Logout(ctx, updated.Token))

	_, err = client.GetProfile(ctx, updated.Token)
	assertStatus(t, err, http.StatusUnauthorized)
	assert.True(t, profilesdk.IsUnauthorized(err))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	client := setupProfileContainer(t, relaxedLimits())
	ctx := t.Context()

	_, err := client.Register(ctx, newRegistration("dup@example.com", "9000000001"))
	require.NoError(t, err)

	_, err = client.Register(ctx, newRegistration("DUP@example.com", ""))
	assertStatus(t, err, http.StatusConflict)
	assert.Equal(t, "Email already registered", profilesdk.ServerMessage(err))

	_, err = client.Register(ctx, newRegistration("", "9000000001"))
	assertStatus(t, err, http.StatusConflict)
	assert.Equal(t, "Phone number already registered", profilesdk.ServerMessage(err))
}

func TestRegisterValidation(t *testing.T) {
	client := setupProfileContainer(t, relaxedLimits())

	req := newRegistration("invalid@example.com", "")
	req.Gender = "robot"

	_, err := client.Register(t.Context(), req)
	assertStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "gender must be one of male, female, transgender", profilesdk.ServerMessage(err))
}

func TestProfileRequiresToken(t *testing.T) {
	client := setupProfileContainer(t, relaxedLimits())

	_, err := client.GetProfile(t.Context(), "not-a-jwt")
	assertStatus(t, err, http.StatusUnauthorized)
}

// TestRateLimitRegister uses production limits: the strict tier allows
// five registrations per minute per IP.
func TestRateLimitRegister(t *testing.T) {
	client := setupProfileContainer(t, nil)
	ctx := t.Context()

	for i := range 5 {
		req := newRegistration("", "")
		req.Phone = "800000000" + string(rune('0'+i))
		_, err := client.Register(ctx, req)
		require.NoError(t, err, "request %d", i+1)
	}

	_, err := client.Register(ctx, newRegistration("", "8000000009"))
	assertStatus(t, err, http.StatusTooManyRequests)
}
