package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rhuss/artikel/pkg/api"
	"github.com/rhuss/artikel/pkg/storage"
)

// Profile is the verified external identity returned by a provider
// code exchange. UID is the provider's canonical identifier and must
// be non-empty; the remaining fields are best-effort profile data.
type Profile struct {
	UID       string
	Login     string
	Name      string
	AvatarURL string
}

// Provider exchanges an authorization code with an external identity
// provider for a verified profile.
type Provider interface {
	// Name is the provider tag stored on users it authenticates.
	Name() string

	// Exchange trades the code for a profile. Implementations return
	// ErrInvalidAuthorizationCode when the provider rejects the code.
	Exchange(ctx context.Context, code string) (Profile, error)
}

// delegated authenticates via a provider code exchange, creating or
// reusing the local user keyed by (provider, uid).
type delegated struct {
	store    storage.UserStore
	provider Provider
	code     string
}

func (d *delegated) resolve(ctx context.Context) (*api.User, error) {
	if d.provider == nil {
		return nil, ErrInvalidAuthorizationCode
	}

	profile, err := d.provider.Exchange(ctx, d.code)
	if err != nil {
		if errors.Is(err, ErrInvalidAuthorizationCode) {
			return nil, ErrInvalidAuthorizationCode
		}
		return nil, fmt.Errorf("exchanging code with %s: %w", d.provider.Name(), err)
	}
	if profile.UID == "" {
		return nil, ErrInvalidAuthorizationCode
	}

	return d.findOrCreate(ctx, profile)
}

// findOrCreate resolves the profile to a local user. A concurrent
// first login can race on the insert; a uniqueness conflict is retried
// once as a lookup, never treated as a duplicate.
func (d *delegated) findOrCreate(ctx context.Context, profile Profile) (*api.User, error) {
	user, err := d.store.FindUserByProviderUID(ctx, d.provider.Name(), profile.UID)
	switch {
	case err == nil:
		return d.refresh(ctx, user, profile)
	case errors.Is(err, storage.ErrNotFound):
		// fall through to create
	default:
		return nil, fmt.Errorf("looking up delegated user: %w", err)
	}

	user = &api.User{
		Login:     profile.Login,
		Provider:  d.provider.Name(),
		UID:       profile.UID,
		Name:      profile.Name,
		AvatarURL: profile.AvatarURL,
	}
	err = d.store.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrConflict) {
		// Lost the race; the row exists now.
		user, err = d.store.FindUserByProviderUID(ctx, d.provider.Name(), profile.UID)
		if err != nil {
			return nil, fmt.Errorf("resolving delegated user after conflict: %w", err)
		}
		return d.refresh(ctx, user, profile)
	}
	if err != nil {
		return nil, fmt.Errorf("creating delegated user: %w", err)
	}
	return user, nil
}

// refresh idempotently updates the stored profile attributes from the
// exchange result.
func (d *delegated) refresh(ctx context.Context, user *api.User, profile Profile) (*api.User, error) {
	if user.Login == profile.Login && user.Name == profile.Name && user.AvatarURL == profile.AvatarURL {
		return user, nil
	}
	user.Login = profile.Login
	user.Name = profile.Name
	user.AvatarURL = profile.AvatarURL
	if err := d.store.UpdateUserProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("refreshing delegated profile: %w", err)
	}
	return user, nil
}
