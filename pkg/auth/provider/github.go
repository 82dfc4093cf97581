// Package provider implements the external identity providers backing
// delegated login. Each provider exchanges an authorization code for a
// verified profile; invalid codes surface as
// auth.ErrInvalidAuthorizationCode so the transport layer can render
// the fixed 401 envelope.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/rhuss/artikel/pkg/auth"
)

const githubUserURL = "https://api.github.com/user"

// GitHubConfig holds the OAuth application settings.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// UserURL overrides the profile endpoint, used by tests.
	UserURL string

	// Endpoint overrides the OAuth endpoints, used by tests.
	Endpoint oauth2.Endpoint
}

// GitHub exchanges authorization codes with the GitHub OAuth flow and
// reads the profile from the user API.
type GitHub struct {
	cfg     *oauth2.Config
	userURL string
}

// Ensure GitHub implements auth.Provider at compile time.
var _ auth.Provider = (*GitHub)(nil)

// NewGitHub creates a GitHub provider.
func NewGitHub(cfg GitHubConfig) *GitHub {
	userURL := cfg.UserURL
	if userURL == "" {
		userURL = githubUserURL
	}
	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = endpoints.GitHub
	}
	return &GitHub{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
		},
		userURL: userURL,
	}
}

// Name returns the provider tag stored on users.
func (g *GitHub) Name() string {
	return "github"
}

// LoginURL builds the authorization URL the client is sent to.
func (g *GitHub) LoginURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

type githubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Exchange trades the code for the GitHub user profile. A rejected
// code maps to auth.ErrInvalidAuthorizationCode; transport failures
// propagate as-is.
func (g *GitHub) Exchange(ctx context.Context, code string) (auth.Profile, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			return auth.Profile{}, auth.ErrInvalidAuthorizationCode
		}
		return auth.Profile{}, fmt.Errorf("exchanging code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userURL, nil)
	if err != nil {
		return auth.Profile{}, err
	}
	resp, err := g.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return auth.Profile{}, fmt.Errorf("fetching profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return auth.Profile{}, auth.ErrInvalidAuthorizationCode
	}

	var profile githubProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return auth.Profile{}, fmt.Errorf("decoding profile: %w", err)
	}
	if profile.ID == 0 {
		return auth.Profile{}, auth.ErrInvalidAuthorizationCode
	}

	return auth.Profile{
		UID:       strconv.FormatInt(profile.ID, 10),
		Login:     profile.Login,
		Name:      profile.Name,
		AvatarURL: profile.AvatarURL,
	}, nil
}
