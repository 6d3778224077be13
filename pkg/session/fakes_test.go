package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/reels/pkg/profilesdk"
	"github.com/aussiebroadwan/reels/pkg/session"
	"github.com/aussiebroadwan/reels/pkg/session/cache"
	"github.com/aussiebroadwan/reels/pkg/session/cache/drivers/memory"
	"github.com/aussiebroadwan/reels/pkg/session/domain"
	"github.com/aussiebroadwan/reels/pkg/session/route"
	"github.com/aussiebroadwan/reels/pkg/slogx"
)

// fakeProfiles records every call made to the profile service.
type fakeProfiles struct {
	mu    sync.Mutex
	calls []string

	getUser *profilesdk.User
	getErr  error
	// getGate, when set, blocks GetProfile until it is closed.
	getGate chan struct{}

	updateResp *profilesdk.AuthResponse
	updateErr  error
	lastUpdate profilesdk.UpdateProfileRequest

	registerResp *profilesdk.AuthResponse
	registerErr  error
	lastRegister profilesdk.RegisterRequest

	logoutErr error
}

func (f *fakeProfiles) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeProfiles) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeProfiles) GetProfile(ctx context.Context, token string) (*profilesdk.User, error) {
	f.record("get:" + token)
	if f.getGate != nil {
		select {
		case <-f.getGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	u := *f.getUser
	return &u, nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, token string, req profilesdk.UpdateProfileRequest) (*profilesdk.AuthResponse, error) {
	f.record("update:" + token)
	f.mu.Lock()
	f.lastUpdate = req
	f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateResp, nil
}

func (f *fakeProfiles) Register(_ context.Context, req profilesdk.RegisterRequest) (*profilesdk.AuthResponse, error) {
	f.record("register")
	f.mu.Lock()
	f.lastRegister = req
	f.mu.Unlock()
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerResp, nil
}

func (f *fakeProfiles) Logout(_ context.Context, token string) error {
	f.record("logout:" + token)
	return f.logoutErr
}

type fakeIdentity struct {
	mu         sync.Mutex
	session    *domain.IdentitySession
	err        error
	signOutErr error
	signOuts   int
}

func (f *fakeIdentity) CurrentSession(context.Context) (*domain.IdentitySession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.err
}

func (f *fakeIdentity) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	f.session = nil
	return f.signOutErr
}

type navCall struct {
	to     route.Route
	params route.Params
}

type recordingNav struct {
	mu    sync.Mutex
	calls []navCall
}

func (n *recordingNav) Reset(to route.Route, params route.Params) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, navCall{to: to, params: params})
}

func (n *recordingNav) Routes() []route.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]route.Route, 0, len(n.calls))
	for _, c := range n.calls {
		out = append(out, c.to)
	}
	return out
}

func (n *recordingNav) Last() navCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[len(n.calls)-1]
}

type harness struct {
	store    *memory.Store
	creds    *cache.Credentials
	profiles *fakeProfiles
	identity *fakeIdentity
	nav      *recordingNav
	r        *session.Reconciler
}

func newHarness(t *testing.T, opts ...func(*session.Config)) *harness {
	t.Helper()

	h := &harness{
		store:    memory.New(),
		profiles: &fakeProfiles{},
		identity: &fakeIdentity{},
		nav:      &recordingNav{},
	}
	h.creds = cache.NewCredentials(h.store, nil, slogx.Discard())

	cfg := session.Config{
		Identity:    h.identity,
		Credentials: h.creds,
		Profiles:    h.profiles,
		Navigator:   h.nav,
		Logger:      slogx.Discard(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r, err := session.New(cfg)
	require.NoError(t, err)
	h.r = r
	return h
}

func (h *harness) seed(t *testing.T, token string, snap *domain.ProfileSnapshot) {
	t.Helper()
	if snap == nil {
		require.NoError(t, h.store.SetMany(t.Context(), map[string]string{cache.KeyAuthToken: token}))
		return
	}
	require.NoError(t, h.creds.Save(t.Context(), token, *snap))
}

func (h *harness) requireCacheEmpty(t *testing.T) {
	t.Helper()
	for _, key := range []string{cache.KeyAuthToken, cache.KeyUserInfo} {
		_, ok, err := h.store.Get(t.Context(), key)
		require.NoError(t, err)
		require.False(t, ok, "%s still cached", key)
	}
}
