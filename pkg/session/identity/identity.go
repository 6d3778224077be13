// Package identity defines the federated identity provider consumed by the
// session reconciler.
package identity

import (
	"context"

	"github.com/aussiebroadwan/reels/pkg/session/domain"
)

// Provider manages a federated sign-in session that lives independently of
// the profile service.
type Provider interface {
	// CurrentSession returns the active session, or nil when there is none.
	CurrentSession(ctx context.Context) (*domain.IdentitySession, error)

	// SignOut terminates the active session. It is a no-op without one.
	SignOut(ctx context.Context) error
}

// None is a Provider that never has a session, for shells that rely on the
// cached bearer token alone.
type None struct{}

func (None) CurrentSession(context.Context) (*domain.IdentitySession, error) { return nil, nil }
func (None) SignOut(context.Context) error                                   { return nil }

var _ Provider = None{}
