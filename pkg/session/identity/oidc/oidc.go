// Package oidc is an identity.Provider backed by an OpenID Connect token set
// obtained through the authorization code flow.
package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/aussiebroadwan/reels/pkg/session/cache"
	"github.com/aussiebroadwan/reels/pkg/session/domain"
	"github.com/aussiebroadwan/reels/pkg/session/identity"
)

var ErrUnavailable = errors.New("oidc: identity provider unavailable")

// Config holds configuration for the OIDC provider.
type Config struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	HTTPClient   *http.Client // Optional, defaults to a 10s client
}

// Provider keeps the token set in a cache.Store under
// cache.KeyIdentitySession and refreshes it when the access token expires.
type Provider struct {
	oauth      *oauth2.Config
	verifier   *gooidc.IDTokenVerifier
	httpClient *http.Client
	store      cache.Store
	logger     *slog.Logger
}

// tokenSet is the persisted form of an oauth2.Token.
type tokenSet struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry"`
	IDToken      string    `json:"id_token"`
}

type idClaims struct {
	Subject             string `json:"sub"`
	Email               string `json:"email"`
	EmailVerified       bool   `json:"email_verified"`
	PhoneNumber         string `json:"phone_number"`
	PhoneNumberVerified bool   `json:"phone_number_verified"`
}

// New discovers the issuer's endpoints and keys.
func New(ctx context.Context, cfg Config, store cache.Store, logger *slog.Logger) (*Provider, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("oidc: issuer is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("oidc: client ID is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	op, err := gooidc.NewProvider(gooidc.ClientContext(ctx, httpClient), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, gooidc.ScopeOfflineAccess, "email", "phone"}
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       scopes,
		Endpoint:     op.Endpoint(),
	}
	// Session lifetime follows the token set, so a stored ID token is only
	// checked for signature, issuer and audience.
	verifier := op.Verifier(&gooidc.Config{ClientID: cfg.ClientID, SkipExpiryCheck: true})

	p := NewWithVerifier(oauthCfg, verifier, store, logger)
	p.httpClient = httpClient
	return p, nil
}

// NewWithVerifier builds a provider from pre-built parts, e.g. a verifier over
// a static key set.
func NewWithVerifier(oauthCfg *oauth2.Config, verifier *gooidc.IDTokenVerifier, store cache.Store, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		oauth:    oauthCfg,
		verifier: verifier,
		store:    store,
		logger:   logger.With("identity_provider", "oidc"),
	}
}

// AuthCodeURL returns the authorization URL for state together with the
// PKCE verifier that Exchange must be given.
func (p *Provider) AuthCodeURL(state string) (string, string) {
	pkce := oauth2.GenerateVerifier()
	return p.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(pkce)), pkce
}

// Exchange redeems an authorization code and signs in with the result.
func (p *Provider) Exchange(ctx context.Context, code, pkceVerifier string) (*domain.IdentitySession, error) {
	tok, err := p.oauth.Exchange(p.clientContext(ctx), code, oauth2.VerifierOption(pkceVerifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code for token: %w", err)
	}
	return p.SignIn(ctx, tok)
}

// SignIn verifies the token's ID token and remembers the token set.
func (p *Provider) SignIn(ctx context.Context, tok *oauth2.Token) (*domain.IdentitySession, error) {
	rawID, _ := tok.Extra("id_token").(string)
	if rawID == "" {
		return nil, errors.New("oidc: missing id_token in token response")
	}

	set := tokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		IDToken:      rawID,
	}
	sess, err := p.verify(ctx, set)
	if err != nil {
		return nil, err
	}
	if err := p.save(ctx, set); err != nil {
		return nil, err
	}
	return sess, nil
}

// CurrentSession implements identity.Provider.
func (p *Provider) CurrentSession(ctx context.Context) (*domain.IdentitySession, error) {
	raw, ok, err := p.store.Get(ctx, cache.KeyIdentitySession)
	if err != nil {
		return nil, fmt.Errorf("read token set: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var set tokenSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil || set.IDToken == "" {
		p.logger.Warn("dropping unreadable token set", "err", err)
		return nil, p.forget(ctx)
	}

	tok := &oauth2.Token{AccessToken: set.AccessToken, RefreshToken: set.RefreshToken, Expiry: set.Expiry}
	if !tok.Valid() {
		if set.RefreshToken == "" {
			p.logger.Info("token set expired without refresh token")
			return nil, p.forget(ctx)
		}

		fresh, err := p.oauth.TokenSource(p.clientContext(ctx), tok).Token()
		if err != nil {
			var re *oauth2.RetrieveError
			if errors.As(err, &re) && re.Response != nil &&
				(re.Response.StatusCode == http.StatusBadRequest || re.Response.StatusCode == http.StatusUnauthorized) {
				p.logger.Info("refresh rejected, session ended", "err", err)
				return nil, p.forget(ctx)
			}
			return nil, fmt.Errorf("%w: refresh: %w", ErrUnavailable, err)
		}

		set.AccessToken = fresh.AccessToken
		set.Expiry = fresh.Expiry
		if fresh.RefreshToken != "" {
			set.RefreshToken = fresh.RefreshToken
		}
		if id, _ := fresh.Extra("id_token").(string); id != "" {
			set.IDToken = id
		}
		if err := p.save(ctx, set); err != nil {
			return nil, err
		}
	}

	return p.verify(ctx, set)
}

// SignOut implements identity.Provider. The token set is only held locally,
// so signing out forgets it.
func (p *Provider) SignOut(ctx context.Context) error {
	return p.forget(ctx)
}

func (p *Provider) verify(ctx context.Context, set tokenSet) (*domain.IdentitySession, error) {
	idt, err := p.verifier.Verify(p.clientContext(ctx), set.IDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}

	var claims idClaims
	if err := idt.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse id_token claims: %w", err)
	}

	return &domain.IdentitySession{
		Subject:       idt.Subject,
		Email:         claims.Email,
		PhoneNumber:   claims.PhoneNumber,
		EmailVerified: claims.EmailVerified,
		PhoneVerified: claims.PhoneNumberVerified,
		ExpiresAt:     set.Expiry,
	}, nil
}

func (p *Provider) save(ctx context.Context, set tokenSet) error {
	buf, err := json.Marshal(set)
	if err != nil {
		return err
	}
	if err := p.store.SetMany(ctx, map[string]string{cache.KeyIdentitySession: string(buf)}); err != nil {
		return fmt.Errorf("store token set: %w", err)
	}
	return nil
}

func (p *Provider) forget(ctx context.Context) error {
	if err := p.store.Remove(ctx, cache.KeyIdentitySession); err != nil {
		return fmt.Errorf("forget token set: %w", err)
	}
	return nil
}

func (p *Provider) clientContext(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return gooidc.ClientContext(ctx, p.httpClient)
}

var _ identity.Provider = (*Provider)(nil)
