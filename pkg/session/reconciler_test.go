package session_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/reels/pkg/profilesdk"
	"github.com/aussiebroadwan/reels/pkg/session"
	"github.com/aussiebroadwan/reels/pkg/session/cache"
	"github.com/aussiebroadwan/reels/pkg/session/domain"
	"github.com/aussiebroadwan/reels/pkg/session/route"
	"github.com/aussiebroadwan/reels/pkg/slogx"
)

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := session.New(session.Config{})
	require.Error(t, err)
}

func TestResolveSessionWithoutSignals(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	d, err := h.r.ResolveSession(t.Context())
	require.NoError(t, err)

	assert.Equal(t, domain.Unauthenticated, d.Kind)
	assert.Empty(t, h.profiles.Calls())
	assert.Equal(t, []route.Route{route.Login}, h.nav.Routes())
}

func TestResolveSessionTokenAccepted(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.seed(t, "tok-1", &domain.ProfileSnapshot{Email: "old@example.com", DisplayName: "Old", RegistrationComplete: true})
	h.profiles.getUser = &profilesdk.User{ID: "u1", Name: "Jo", Email: "jo@example.com", RegistrationComplete: false}

	d, err := h.r.ResolveSession(t.Context())
	require.NoError(t, err)

	assert.Equal(t, domain.AuthenticatedIncomplete, d.Kind)
	assert.Equal(t, "u1", d.Profile.ID)
	assert.Equal(t, []string{"get:tok-1"}, h.profiles.Calls())

	raw, ok, err := h.store.Get(t.Context(), cache.KeyUserInfo)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"email":"jo@example.com","displayName":"Jo","registrationComplete":false}`, raw)

	require.Equal(t, []route.Route{route.Registration}, h.nav.Routes())
	params := h.nav.Last().params
	assert.True(t, params.ConsumeFlag(route.ParamShowRegistrationModal))
	assert.False(t, params.ConsumeFlag(route.ParamShowRegistrationModal), "flag is delivered once")

	sess := h.r.Session()
	assert.Equal(t, "tok-1", sess.CachedToken)
	require.NotNil(t, sess.CachedProfileSnapshot)
	assert.Equal(t, "Jo", sess.CachedProfileSnapshot.DisplayName)
}

func TestResolveSessionCompleteProfileGoesHome(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.seed(t, "tok-1", nil)
	h.profiles.getUser = &profilesdk.User{ID: "u1", Email: "jo@example.com", RegistrationComplete: true}

	d, err := h.r.ResolveSession(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.AuthenticatedComplete, d.Kind)
	assert.Equal(t, []route.Route{route.Home}, h.nav.Routes())
}

func TestResolveSessionTokenRejected(t *testing.T) {
	t.Parallel()

	for _, withIdentity := range []bool{false, true} {
		name := "without identity"
		if withIdentity {
			name = "with identity"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)
			h.seed(t, "tok-1", &domain.ProfileSnapshot{Email: "jo@example.com", RegistrationComplete: true})
			h.profiles.getErr = &profilesdk.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid token"}
			if withIdentity {
				h.identity.session = &domain.IdentitySession{Email: "idp@example.com"}
			}

			d, err := h.r.ResolveSession(t.Context())
			require.NoError(t, err)
			h.requireCacheEmpty(t)
			assert.False(t, h.r.Session().HasToken())

			if withIdentity {
				assert.Equal(t, domain.AuthenticatedIncomplete, d.Kind)
				assert.Equal(t, "idp@example.com", d.Profile.Email)
				assert.Equal(t, []route.Route{route.Registration}, h.nav.Routes())
				return
			}
			assert.Equal(t, domain.Unauthenticated, d.Kind)
			assert.Equal(t, []route.Route{route.Login}, h.nav.Routes())
		})
	}
}

func TestResolveSessionTransientKeepsCache(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	snap := &domain.ProfileSnapshot{Email: "jo@example.com", DisplayName: "Jo", RegistrationComplete: true}
	h.seed(t, "tok-1", snap)
	h.profiles.getErr = errors.New("failed to send request: connection refused")

	d, err := h.r.ResolveSession(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.AuthenticatedComplete, d.Kind)
	assert.Equal(t, "Jo", d.Profile.Name)

	token, cached, err := h.creds.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, snap, cached)
}

func TestResolveSessionServerErrorIsTransient(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.seed(t, "tok-1", nil)
	h.profiles.getErr = &profilesdk.APIError{StatusCode: http.StatusBadGateway}

	d, err := h.r.ResolveSession(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.AuthenticatedIncomplete, d.Kind)

	token, _, err := h.creds.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestResolveSessionIdentityOnly(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.identity.session = &domain.IdentitySession{Email: "idp@example.com", PhoneNumber: "+919876543210"}

	d, err := h.r.ResolveSession(t.Context())
	require.NoError(t, err)

	assert.Equal(t, domain.AuthenticatedIncomplete, d.Kind)
	assert.Equal(t, domain.MinimalProfile("idp@example.com"), d.Profile)
	assert.Empty(t, h.profiles.Calls())
	assert.True(t, h.r.Session().IdentitySessionPresent)
}

func TestResolveSessionIdentityLookupFailureIsAbsent(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.identity.err = errors.New("identity provider unreachable")

	d, err := h.r.ResolveSession(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.Unauthenticated, d.Kind)
}

func TestResolveSessionIsIdempotent(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.seed(t, "tok-1", nil)
	h.profiles.getUser = &profilesdk.User{ID: "u1", RegistrationComplete: true}

	first, err := h.r.ResolveSession(t.Context())
	require.NoError(t, err)
	second, err := h.r.ResolveSession(t.Context())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, h.profiles.Calls(), 1)
	assert.Len(t, h.nav.Routes(), 1)

	memo, ok := h.r.Decision()
	assert.True(t, ok)
	assert.Equal(t, first, memo)
}

func TestResolveSessionConcurrentCallersShareFlight(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.seed(t, "tok-1", nil)
	h.profiles.getUser = &profilesdk.User{ID: "u1", RegistrationComplete: true}
	h.profiles.getGate = make(chan struct{})

	const callers = 8
	results := make([]domain.AuthDecision, callers)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = h.r.ResolveSession(t.Context())
	}()
	require.Eventually(t, func() bool { return len(h.profiles.Calls()) == 1 }, time.Second, time.Millisecond)

	_, resolved := h.r.Decision()
	assert.False(t, resolved)

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = h.r.ResolveSession(t.Context())
		}()
	}
	close(h.profiles.getGate)
	wg.Wait()

	for _, d := range results {
		assert.Equal(t, domain.AuthenticatedComplete, d.Kind)
	}
	assert.Len(t, h.profiles.Calls(), 1)
	assert.Equal(t, []route.Route{route.Home}, h.nav.Routes())
}

func TestResolveSessionWaiterHonoursContext(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.seed(t, "tok-1", nil)
	h.profiles.getUser = &profilesdk.User{ID: "u1"}
	h.profiles.getGate = make(chan struct{})
	defer close(h.profiles.getGate)

	go func() { _, _ = h.r.ResolveSession(t.Context()) }()
	require.Eventually(t, func() bool { return len(h.profiles.Calls()) == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := h.r.ResolveSession(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolveSessionSupersededByLogout(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.seed(t, "tok-1", nil)
	h.profiles.getUser = &profilesdk.User{ID: "u1", RegistrationComplete: true}
	h.profiles.getGate = make(chan struct{})

	type result struct {
		d   domain.AuthDecision
		err error
	}
	first := make(chan result, 1)
	go func() {
		d, err := h.r.ResolveSession(t.Context())
		first <- result{d, err}
	}()
	require.Eventually(t, func() bool { return len(h.profiles.Calls()) == 1 }, time.Second, time.Millisecond)

	waiter := make(chan result, 1)
	go func() {
		d, err := h.r.ResolveSession(t.Context())
		waiter <- result{d, err}
	}()

	require.NoError(t, h.r.Logout(t.Context()))
	close(h.profiles.getGate)

	for _, ch := range []chan result{first, waiter} {
		res := <-ch
		require.NoError(t, res.err)
		assert.Equal(t, domain.Unauthenticated, res.d.Kind)
	}

	h.requireCacheEmpty(t)
	assert.NotContains(t, h.nav.Routes(), route.Home)
	assert.Equal(t, route.Login, h.nav.Last().to)
}

// removeFailingStore accepts reads and writes but cannot delete.
type removeFailingStore struct {
	cache.Store
}

func (removeFailingStore) Remove(context.Context, ...string) error {
	return errors.New("disk full")
}

func TestResolveSessionRejectedTokenPurgeFailure(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.seed(t, "tok-1", nil)
	h.profiles.getErr = &profilesdk.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid token"}

	r, err := session.New(session.Config{
		Identity:    h.identity,
		Credentials: cache.NewCredentials(removeFailingStore{Store: h.store}, nil, slogx.Discard()),
		Profiles:    h.profiles,
		Navigator:   h.nav,
		Logger:      slogx.Discard(),
	})
	require.NoError(t, err)

	_, err = r.ResolveSession(t.Context())
	require.Error(t, err)
	assert.Empty(t, h.nav.Routes())

	_, resolved := r.Decision()
	assert.False(t, resolved)

	token, ok, err := h.store.Get(t.Context(), cache.KeyAuthToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
}

func TestResolveSessionAfterUnmount(t *testing.T) {
	t.Parallel()

	nav := &recordingNav{}
	mount := route.NewMount(nav)
	h := newHarness(t, func(cfg *session.Config) { cfg.Navigator = mount })
	mount.Unmount()

	d, err := h.r.ResolveSession(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.Unauthenticated, d.Kind)
	assert.Empty(t, nav.Routes())
}
