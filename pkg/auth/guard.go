package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rhuss/artikel/pkg/api"
	"github.com/rhuss/artikel/pkg/storage"
)

// Guard gates protected routes. It extracts the bearer token, resolves
// it to its owning user, and rejects the request with the fixed 403
// envelope when that fails. Routes are protected by wrapping their
// handler in Require; everything else stays public.
type Guard struct {
	store storage.Store
}

// NewGuard creates a guard backed by the given store.
func NewGuard(store storage.Store) *Guard {
	return &Guard{store: store}
}

// Require wraps a handler with the bearer-token check. On success the
// resolved user is attached to the request context for ownership
// checks downstream. A missing header, a malformed header, and an
// unknown token all fail identically.
func (g *Guard) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value, ok := BearerToken(r)
		if !ok {
			g.forbid(w, r)
			return
		}

		token, err := g.store.FindToken(r.Context(), value)
		if err != nil {
			g.forbid(w, r)
			return
		}

		user, err := g.store.GetUser(r.Context(), token.UserID)
		if err != nil {
			// A token without its user is a store inconsistency, but
			// the caller still just sees the fixed envelope.
			slog.Error("token resolves to missing user", "token_id", token.ID, "user_id", token.UserID)
			g.forbid(w, r)
			return
		}

		next(w, r.WithContext(SetUser(r.Context(), user)))
	}
}

func (g *Guard) forbid(w http.ResponseWriter, r *http.Request) {
	slog.Warn("request forbidden", "path", r.URL.Path, "method", r.Method, "remote_addr", r.RemoteAddr)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(api.ErrorsDocument{Errors: []api.ErrorObject{api.ForbiddenError()}})
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", false
	}
	return token, true
}
