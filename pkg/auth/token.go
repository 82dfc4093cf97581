package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/rhuss/artikel/pkg/api"
	"github.com/rhuss/artikel/pkg/storage"
)

// tokenBytes yields 20 hex characters per token value.
const tokenBytes = 10

// issueToken returns the user's existing token or creates a new one.
// A value collision on insert is retried once with a fresh value; two
// concurrent logins may legitimately each end up with a token row, the
// store's uniqueness constraint only guards the value itself.
func issueToken(ctx context.Context, store storage.TokenStore, userID int64) (*api.AccessToken, error) {
	existing, err := store.FindTokenByUser(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("looking up token: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		token := &api.AccessToken{Token: generateToken(), UserID: userID}
		err = store.CreateToken(ctx, token)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return nil, fmt.Errorf("creating token: %w", err)
		}
	}
	return nil, fmt.Errorf("creating token: %w", err)
}

func generateToken() string {
	b := make([]byte, tokenBytes)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Revoke deletes the given token value. Revoking an unknown token is
// not an error; the session is gone either way.
func Revoke(ctx context.Context, store storage.TokenStore, token string) error {
	err := store.DeleteToken(ctx, token)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}
