package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rhuss/artikel/pkg/api"
	"github.com/rhuss/artikel/pkg/auth"
	"github.com/rhuss/artikel/pkg/observability"
	"github.com/rhuss/artikel/pkg/transport"
)

// loginRequest accepts both login shapes: a top-level code (delegated
// flow callback) and data/attributes credentials. A non-empty code
// wins, matching the facade's selection rule.
type loginRequest struct {
	Code string `json:"code"`
	Data struct {
		Attributes struct {
			Code     string `json:"code"`
			Login    string `json:"login"`
			Password string `json:"password"`
		} `json:"attributes"`
	} `json:"data"`
}

func (req *loginRequest) credentials() auth.Credentials {
	code := req.Code
	if code == "" {
		code = req.Data.Attributes.Code
	}
	return auth.Credentials{
		Code:     code,
		Login:    req.Data.Attributes.Login,
		Password: req.Data.Attributes.Password,
	}
}

func (a *Adapter) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, 1<<20)); err == nil {
		_ = json.Unmarshal(body, &req)
	}

	creds := req.credentials()
	strategy := "standard"
	if creds.Code != "" {
		strategy = "delegated"
	}

	authenticator := auth.New(a.store, a.provider, creds)
	if err := authenticator.Perform(r.Context()); err != nil {
		observability.LoginsTotal.WithLabelValues(strategy, "failure").Inc()
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			transport.WriteErrors(w, http.StatusUnauthorized, api.InvalidCredentialsError())
		case errors.Is(err, auth.ErrInvalidAuthorizationCode):
			transport.WriteErrors(w, http.StatusUnauthorized, api.InvalidAuthorizationCodeError())
		default:
			writeServerError(w, err)
		}
		return
	}

	observability.LoginsTotal.WithLabelValues(strategy, "success").Inc()
	transport.WriteJSON(w, http.StatusCreated, api.Document{
		Data: api.AccessTokenResource(authenticator.AccessToken()),
	})
}

func (a *Adapter) handleLogout(w http.ResponseWriter, r *http.Request) {
	// The guard already validated the header, so the token is present.
	token, _ := auth.BearerToken(r)
	if err := auth.Revoke(r.Context(), a.store, token); err != nil {
		writeServerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
