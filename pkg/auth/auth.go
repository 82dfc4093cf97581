// Package auth implements the authentication subsystem: credential and
// delegated login strategies behind a single facade, opaque bearer
// token issuance, and the request guard that resolves tokens back to
// users.
package auth

import (
	"context"
	"errors"

	"github.com/rhuss/artikel/pkg/api"
	"github.com/rhuss/artikel/pkg/storage"
)

// Sentinel errors.
var (
	// ErrInvalidCredentials covers both an unknown login and a wrong
	// password; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid login or password")

	// ErrInvalidAuthorizationCode is returned when the provider
	// exchange fails or yields no external identifier.
	ErrInvalidAuthorizationCode = errors.New("invalid authorization code")
)

// Credentials carries the mutually exclusive login inputs. A non-empty
// Code selects the delegated strategy; otherwise the standard strategy
// runs with Login/Password, which may be empty and then fail
// predictably.
type Credentials struct {
	Code     string
	Login    string
	Password string
}

// strategy resolves credentials to a user. Implementations do not
// issue tokens; the facade does that after a successful resolve.
type strategy interface {
	resolve(ctx context.Context) (*api.User, error)
}

// Authenticator selects and runs a login strategy, then issues (or
// reuses) the user's access token. User and AccessToken are populated
// only after a successful Perform.
type Authenticator struct {
	store    storage.Store
	strategy strategy

	user  *api.User
	token *api.AccessToken
}

// New builds an authenticator for the given credentials. The strategy
// is chosen once, at construction time.
func New(store storage.Store, provider Provider, creds Credentials) *Authenticator {
	a := &Authenticator{store: store}
	if creds.Code != "" {
		a.strategy = &delegated{store: store, provider: provider, code: creds.Code}
	} else {
		a.strategy = &standard{store: store, login: creds.Login, password: creds.Password}
	}
	return a
}

// Perform runs the selected strategy and, on success, binds an access
// token to the resolved user.
func (a *Authenticator) Perform(ctx context.Context) error {
	user, err := a.strategy.resolve(ctx)
	if err != nil {
		return err
	}

	token, err := issueToken(ctx, a.store, user.ID)
	if err != nil {
		return err
	}

	a.user = user
	a.token = token
	return nil
}

// User returns the authenticated user, nil before a successful Perform.
func (a *Authenticator) User() *api.User {
	return a.user
}

// AccessToken returns the issued token, nil before a successful Perform.
func (a *Authenticator) AccessToken() *api.AccessToken {
	return a.token
}
