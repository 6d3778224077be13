package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/reels/internal/profile/domain"
	"github.com/aussiebroadwan/reels/internal/profile/store"
	"github.com/aussiebroadwan/reels/pkg/jwtx"
)

// TokenService issues and revokes the bearer tokens handed to clients.
type TokenService struct {
	Signer   jwtx.Signer
	Store    store.Store
	Issuer   string
	Audience []string
	TTL      time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue signs a new bearer token for u.
func (s *TokenService) Issue(u domain.User) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultTokenTTL
	}

	claims := jwtx.NewClaims(u.ID, u.Email, ttl, s.Issuer, s.Audience, s.now())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Revoke records the token described by claims as revoked.
func (s *TokenService) Revoke(ctx context.Context, claims jwtx.Claims) error {
	return s.revoke(ctx, s.Store, claims)
}

func (s *TokenService) revoke(ctx context.Context, st store.Store, claims jwtx.Claims) error {
	if claims.ID == "" {
		return nil
	}
	return st.RevokedTokens().RevokeToken(ctx, domain.RevokedToken{
		JTI:       claims.ID,
		UserID:    claims.Subject,
		ExpiresAt: claims.ExpiresAtTime(),
	})
}

// IsRevoked implements httpx.RevocationChecker.
func (s *TokenService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	return s.Store.RevokedTokens().IsRevoked(ctx, jti)
}
