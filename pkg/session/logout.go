package session

import (
	"context"

	"github.com/aussiebroadwan/reels/pkg/session/domain"
	"github.com/aussiebroadwan/reels/pkg/session/route"
	"github.com/aussiebroadwan/reels/pkg/slogx"
)

// Logout signs out of the identity provider, tells the profile service, and
// then clears the cached credentials. Remote failures are logged and
// ignored; the local purge always runs and its failure is the only error
// returned.
func (r *Reconciler) Logout(ctx context.Context) error {
	log := slogx.For(ctx, r.logger, "op", "logout")

	sess, err := r.identity.CurrentSession(ctx)
	if err != nil {
		log.Warn("identity lookup failed during logout", "err", err)
	}
	if sess != nil || err != nil {
		if err := r.identity.SignOut(ctx); err != nil {
			log.Warn("identity sign-out failed", "err", err)
		}
	}

	token, _, err := r.creds.Load(ctx)
	if err != nil {
		log.Warn("credential cache unreadable during logout", "err", err)
	}
	if token != "" {
		if err := r.profiles.Logout(ctx, token); err != nil {
			log.Warn("backend logout failed", "err", err)
		}
	}

	r.writeMu.Lock()
	purgeErr := r.creds.Purge(ctx)
	r.mu.Lock()
	r.gen++
	r.state = stateIdle
	r.inflight = nil
	r.decision = domain.AuthDecision{}
	r.session = domain.Session{}
	r.mu.Unlock()
	r.writeMu.Unlock()

	if purgeErr != nil {
		log.Error("failed to clear cached credentials", "err", purgeErr)
		return purgeErr
	}

	log.Info("logged out")
	r.nav.Reset(route.Login, route.Params{})
	return nil
}
