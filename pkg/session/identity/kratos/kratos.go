// Package kratos is an identity.Provider backed by an Ory Kratos native
// (API) session token.
package kratos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/reels/pkg/session/cache"
	"github.com/aussiebroadwan/reels/pkg/session/domain"
	"github.com/aussiebroadwan/reels/pkg/session/identity"
	kratos "github.com/ory/kratos-client-go"
)

var (
	ErrSessionInactive = errors.New("kratos: session is not active")
	ErrMissingIdentity = errors.New("kratos: session has no identity")
	ErrUnavailable     = errors.New("kratos: unavailable")
)

// Provider keeps the Kratos session token in a cache.Store under
// cache.KeyIdentitySession.
type Provider struct {
	client *kratos.APIClient
	store  cache.Store
	logger *slog.Logger
}

// New creates a provider for the Kratos public API at baseURL.
func New(baseURL string, store cache.Store, timeout time.Duration, logger *slog.Logger) *Provider {
	configuration := kratos.NewConfiguration()
	configuration.Servers = []kratos.ServerConfiguration{
		{URL: strings.TrimSuffix(baseURL, "/")},
	}
	configuration.HTTPClient = &http.Client{Timeout: timeout}

	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		client: kratos.NewAPIClient(configuration),
		store:  store,
		logger: logger.With("identity_provider", "kratos"),
	}
}

// SignIn validates a native session token obtained from a completed Kratos
// login or registration flow and remembers it.
func (p *Provider) SignIn(ctx context.Context, sessionToken string) (*domain.IdentitySession, error) {
	sess, err := p.whoami(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if err := p.store.SetMany(ctx, map[string]string{cache.KeyIdentitySession: sessionToken}); err != nil {
		return nil, fmt.Errorf("store session token: %w", err)
	}
	return sess, nil
}

// CurrentSession implements identity.Provider. A token Kratos no longer
// recognises is forgotten and reported as no session.
func (p *Provider) CurrentSession(ctx context.Context) (*domain.IdentitySession, error) {
	token, ok, err := p.store.Get(ctx, cache.KeyIdentitySession)
	if err != nil {
		return nil, fmt.Errorf("read session token: %w", err)
	}
	if !ok || token == "" {
		return nil, nil
	}

	sess, err := p.whoami(ctx, token)
	switch {
	case err == nil:
		return sess, nil
	case errors.Is(err, ErrUnavailable):
		return nil, err
	default:
		p.logger.Info("dropping rejected session token", "err", err)
		if rmErr := p.store.Remove(ctx, cache.KeyIdentitySession); rmErr != nil {
			return nil, fmt.Errorf("forget session token: %w", rmErr)
		}
		return nil, nil
	}
}

// SignOut implements identity.Provider. The stored token is forgotten even
// when Kratos cannot be reached.
func (p *Provider) SignOut(ctx context.Context) error {
	token, ok, err := p.store.Get(ctx, cache.KeyIdentitySession)
	if err != nil {
		return fmt.Errorf("read session token: %w", err)
	}
	if !ok || token == "" {
		return nil
	}

	body := kratos.NewPerformNativeLogoutBody(token)
	resp, remoteErr := p.client.FrontendAPI.PerformNativeLogout(ctx).PerformNativeLogoutBody(*body).Execute()
	if remoteErr != nil && resp != nil && resp.StatusCode == http.StatusUnauthorized {
		// already gone on the server side
		remoteErr = nil
	}

	if err := p.store.Remove(ctx, cache.KeyIdentitySession); err != nil {
		return fmt.Errorf("forget session token: %w", err)
	}
	if remoteErr != nil {
		return fmt.Errorf("%w: logout: %w", ErrUnavailable, remoteErr)
	}
	return nil
}

func (p *Provider) whoami(ctx context.Context, token string) (*domain.IdentitySession, error) {
	session, resp, err := p.client.FrontendAPI.ToSession(ctx).XSessionToken(token).Execute()
	if err != nil {
		if resp != nil {
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return nil, fmt.Errorf("kratos: session rejected (%d)", resp.StatusCode)
			}
			return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if session.Active != nil && !*session.Active {
		return nil, ErrSessionInactive
	}
	if session.Identity == nil {
		return nil, ErrMissingIdentity
	}

	return mapSession(session), nil
}

func mapSession(s *kratos.Session) *domain.IdentitySession {
	out := &domain.IdentitySession{Subject: s.Identity.Id}
	if s.ExpiresAt != nil {
		out.ExpiresAt = *s.ExpiresAt
	}

	if traits, ok := s.Identity.Traits.(map[string]any); ok {
		out.Email = stringTrait(traits, "email")
		out.PhoneNumber = stringTrait(traits, "phone")
		if out.PhoneNumber == "" {
			out.PhoneNumber = stringTrait(traits, "phone_number")
		}
	}

	for _, addr := range s.Identity.VerifiableAddresses {
		if !addr.Verified {
			continue
		}
		switch {
		case addr.Via == "email" && strings.EqualFold(addr.Value, out.Email):
			out.EmailVerified = true
		case addr.Via == "sms" && addr.Value == out.PhoneNumber:
			out.PhoneVerified = true
		}
	}
	return out
}

func stringTrait(traits map[string]any, key string) string {
	if v, ok := traits[key].(string); ok {
		return v
	}
	return ""
}

var _ identity.Provider = (*Provider)(nil)
