// Package session reconciles a federated identity session with the locally
// cached bearer token and profile, and owns registration completion and
// logout.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/aussiebroadwan/reels/pkg/profilesdk"
	"github.com/aussiebroadwan/reels/pkg/session/cache"
	"github.com/aussiebroadwan/reels/pkg/session/domain"
	"github.com/aussiebroadwan/reels/pkg/session/identity"
	"github.com/aussiebroadwan/reels/pkg/session/route"
	"github.com/aussiebroadwan/reels/pkg/slogx"
)

// DefaultPhonePrefix is stripped from identity phone numbers before they are
// sent to the profile service.
const DefaultPhonePrefix = "+91"

// ProfileService is the subset of the profile service client the reconciler
// calls. *profilesdk.Client implements it.
type ProfileService interface {
	GetProfile(ctx context.Context, token string) (*profilesdk.User, error)
	UpdateProfile(ctx context.Context, token string, req profilesdk.UpdateProfileRequest) (*profilesdk.AuthResponse, error)
	Register(ctx context.Context, req profilesdk.RegisterRequest) (*profilesdk.AuthResponse, error)
	Logout(ctx context.Context, token string) error
}

// Config wires a Reconciler to its collaborators.
type Config struct {
	Identity    identity.Provider
	Credentials *cache.Credentials
	Profiles    ProfileService

	// Navigator receives exactly one Reset per resolution. Optional.
	Navigator route.Navigator
	Logger    *slog.Logger

	// PhonePrefix defaults to DefaultPhonePrefix.
	PhonePrefix string
	// Now defaults to time.Now.
	Now func() time.Time
}

type resolveState int

const (
	stateIdle resolveState = iota
	stateInFlight
	stateResolved
)

// flight is one in-progress resolution shared by concurrent callers.
type flight struct {
	done     chan struct{}
	decision domain.AuthDecision
	err      error
}

// Reconciler is the only writer of the cached credentials.
type Reconciler struct {
	identity    identity.Provider
	creds       *cache.Credentials
	profiles    ProfileService
	nav         route.Navigator
	logger      *slog.Logger
	phonePrefix string
	now         func() time.Time
	validate    *validator.Validate

	// writeMu orders cache writes against generation changes so a
	// superseded resolution never writes after a logout.
	writeMu sync.Mutex

	mu       sync.Mutex
	state    resolveState
	gen      uint64
	inflight *flight
	decision domain.AuthDecision
	session  domain.Session
}

// New validates cfg and returns an idle Reconciler.
func New(cfg Config) (*Reconciler, error) {
	if cfg.Identity == nil {
		return nil, errors.New("session: identity provider is required")
	}
	if cfg.Credentials == nil {
		return nil, errors.New("session: credentials store is required")
	}
	if cfg.Profiles == nil {
		return nil, errors.New("session: profile service is required")
	}

	r := &Reconciler{
		identity:    cfg.Identity,
		creds:       cfg.Credentials,
		profiles:    cfg.Profiles,
		nav:         cfg.Navigator,
		logger:      cfg.Logger,
		phonePrefix: cfg.PhonePrefix,
		now:         cfg.Now,
	}
	if r.nav == nil {
		r.nav = route.Discard
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.phonePrefix == "" {
		r.phonePrefix = DefaultPhonePrefix
	}
	if r.now == nil {
		r.now = time.Now
	}
	r.validate = newValidator(r.now)
	return r, nil
}

// Session returns the in-memory view computed by the last resolution.
func (r *Reconciler) Session() domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Decision returns the memoised decision, if resolution has completed.
func (r *Reconciler) Decision() (domain.AuthDecision, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decision, r.state == stateResolved
}

// ResolveSession produces the AuthDecision for this process. It runs at most
// once: concurrent callers share the in-flight result and later callers get
// the memoised decision, both without I/O. Logout makes it runnable again.
//
// Expected conditions (no credentials, a rejected token, an unreachable
// service) always produce a decision. An error is returned only when the
// caller's context ends while waiting, or when a rejected token could not be
// purged; no navigation happens in that case. A resolution overtaken by
// Logout or CompleteRegistration returns the state they left behind.
func (r *Reconciler) ResolveSession(ctx context.Context) (domain.AuthDecision, error) {
	r.mu.Lock()
	switch r.state {
	case stateResolved:
		d := r.decision
		r.mu.Unlock()
		return d, nil
	case stateInFlight:
		f := r.inflight
		r.mu.Unlock()
		select {
		case <-f.done:
			return f.decision, f.err
		case <-ctx.Done():
			return domain.AuthDecision{}, ctx.Err()
		}
	}

	f := &flight{done: make(chan struct{})}
	r.state = stateInFlight
	r.inflight = f
	gen := r.gen
	r.mu.Unlock()

	out, sess, err := r.resolve(ctx, gen)

	r.mu.Lock()
	current := r.gen == gen
	decision := out.Decision
	if current {
		r.inflight = nil
		r.session = sess
		if err == nil {
			r.decision = out.Decision
			r.state = stateResolved
		} else {
			r.state = stateIdle
		}
	} else {
		// A logout or registration landed mid-flight; report what it left.
		decision = domain.Deny()
		if r.state == stateResolved {
			decision = r.decision
		}
	}
	f.decision, f.err = decision, err
	close(f.done)
	r.mu.Unlock()

	if current && err == nil {
		r.navigate(decision)
	}
	return decision, err
}

func (r *Reconciler) resolve(ctx context.Context, gen uint64) (Outcome, domain.Session, error) {
	log := slogx.For(ctx, r.logger, "op", "resolve_session")

	var (
		idSess *domain.IdentitySession
		token  string
		snap   *domain.ProfileSnapshot
	)

	var g errgroup.Group
	g.Go(func() error {
		s, err := r.identity.CurrentSession(ctx)
		if err != nil {
			log.Warn("identity lookup failed, treating as signed out", "err", err)
			return nil
		}
		idSess = s
		return nil
	})
	g.Go(func() error {
		t, s, err := r.creds.Load(ctx)
		if err != nil {
			log.Warn("credential cache unreadable, treating as empty", "err", err)
			return nil
		}
		token, snap = t, s
		return nil
	})
	_ = g.Wait()

	in := Inputs{Identity: idSess, Token: token, Snapshot: snap}
	if NeedsFetch(token) {
		user, err := r.profiles.GetProfile(ctx, token)
		switch {
		case err == nil:
			in.Fetch = FetchOK
			in.Profile = profileFromUser(*user)
		case profilesdk.IsUnauthorized(err):
			in.Fetch = FetchRejected
			log.Info("cached token rejected", "err", ErrAuthTokenRejected)
		default:
			in.Fetch = FetchTransient
			log.Warn("profile fetch failed, using cached profile",
				"err", &TransientNetworkError{Op: "get profile", Err: err})
		}
	}

	out := Reconcile(in)
	sess := domain.Session{
		IdentitySessionPresent: idSess != nil,
		CachedToken:            token,
		CachedProfileSnapshot:  snap,
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if !r.current(gen) {
		log.Info("session resolution superseded")
		return out, sess, nil
	}

	switch out.Effect {
	case EffectOverwriteSnapshot:
		if err := r.creds.SaveSnapshot(ctx, out.Snapshot); err != nil {
			log.Warn("failed to refresh cached profile", "err", err)
		} else {
			s := out.Snapshot
			sess.CachedProfileSnapshot = &s
		}
	case EffectPurge:
		if err := r.creds.Purge(ctx); err != nil {
			log.Error("failed to purge rejected credentials", "err", err)
			return out, sess, err
		}
		sess.CachedToken = ""
		sess.CachedProfileSnapshot = nil
	}

	log.Info("session resolved",
		"decision", out.Decision.Kind.String(),
		"identity_session", idSess != nil,
		"cached_token", token != "",
	)
	return out, sess, nil
}

func (r *Reconciler) current(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen == gen
}

func (r *Reconciler) navigate(d domain.AuthDecision) {
	switch d.Kind {
	case domain.AuthenticatedComplete:
		r.nav.Reset(route.Home, route.Params{})
	case domain.AuthenticatedIncomplete:
		r.nav.Reset(route.Registration, route.NewParams(map[string]any{
			route.ParamShowRegistrationModal: true,
		}))
	default:
		r.nav.Reset(route.Login, route.Params{})
	}
}

func profileFromUser(u profilesdk.User) domain.RemoteProfile {
	dob, _ := time.Parse(domain.DateLayout, u.DateOfBirth)
	return domain.RemoteProfile{
		ID:                   u.ID,
		Name:                 u.Name,
		Email:                u.Email,
		Phone:                u.Phone,
		DateOfBirth:          dob,
		Gender:               domain.Gender(u.Gender),
		RegistrationComplete: u.RegistrationComplete,
		IsPhoneVerified:      u.IsPhoneVerified,
		IsEmailVerified:      u.IsEmailVerified,
	}
}
