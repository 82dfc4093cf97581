package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/rhuss/artikel/pkg/auth"
)

const (
	googleIssuer       = "https://accounts.google.com"
	googleScopeEmail   = "email"
	googleScopeProfile = "profile"
)

// GoogleConfig holds the OAuth application settings.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Google exchanges authorization codes with Google and reads the
// profile from the verified OIDC ID token.
type Google struct {
	cfg      *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// Ensure Google implements auth.Provider at compile time.
var _ auth.Provider = (*Google)(nil)

type googleClaims struct {
	Sub     string `json:"sub,omitempty"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// NewGoogle creates a Google provider. It performs OIDC discovery
// against the Google issuer.
func NewGoogle(ctx context.Context, cfg GoogleConfig) (*Google, error) {
	p, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("new oidc provider: %w", err)
	}

	return &Google{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, googleScopeProfile, googleScopeEmail},
			Endpoint:     endpoints.Google,
		},
		verifier: p.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// Name returns the provider tag stored on users.
func (g *Google) Name() string {
	return "google"
}

// LoginURL builds the authorization URL the client is sent to.
func (g *Google) LoginURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

// Exchange trades the code for claims of the verified ID token.
func (g *Google) Exchange(ctx context.Context, code string) (auth.Profile, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			return auth.Profile{}, auth.ErrInvalidAuthorizationCode
		}
		return auth.Profile{}, fmt.Errorf("exchanging code: %w", err)
	}

	raw, ok := tok.Extra("id_token").(string)
	if !ok {
		return auth.Profile{}, auth.ErrInvalidAuthorizationCode
	}

	idToken, err := g.verifier.Verify(ctx, raw)
	if err != nil {
		return auth.Profile{}, auth.ErrInvalidAuthorizationCode
	}

	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return auth.Profile{}, fmt.Errorf("decoding claims: %w", err)
	}
	if claims.Sub == "" {
		return auth.Profile{}, auth.ErrInvalidAuthorizationCode
	}

	return auth.Profile{
		UID:       claims.Sub,
		Login:     claims.Email,
		Name:      claims.Name,
		AvatarURL: claims.Picture,
	}, nil
}
