package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/rhuss/artikel/pkg/api"
	"github.com/rhuss/artikel/pkg/storage"
)

// standard authenticates a login/password pair against the stored
// bcrypt digest of a standard-provider user.
type standard struct {
	store    storage.UserStore
	login    string
	password string
}

func (s *standard) resolve(ctx context.Context) (*api.User, error) {
	user, err := s.store.FindUserByLogin(ctx, s.login)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Burn a comparison so a missing user costs the same as a
			// wrong password.
			_ = bcrypt.CompareHashAndPassword(enumerationDecoy, []byte(s.password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordDigest), []byte(s.password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// enumerationDecoy is a digest of no particular value, compared against
// when the login does not exist.
var enumerationDecoy = mustHash("decoy")

func mustHash(password string) []byte {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return digest
}

// HashPassword produces the bcrypt digest stored for standard users.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}
