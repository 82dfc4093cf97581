// Package http serves the artikel JSON:API over HTTP. The adapter owns
// the route table and per-route guard wiring; handlers are thin glue
// between the request, the store, and the serialization helpers.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rhuss/artikel/pkg/auth"
	"github.com/rhuss/artikel/pkg/pagination"
	"github.com/rhuss/artikel/pkg/storage"
	"github.com/rhuss/artikel/pkg/transport"
)

// Adapter routes requests to the resource handlers.
type Adapter struct {
	store    storage.Store
	provider auth.Provider // nil disables delegated login
	guard    *auth.Guard
	pages    pagination.Config
	mux      *http.ServeMux
	handler  http.Handler
}

// NewAdapter creates the HTTP adapter. Public routes (reads,
// registration, login) bypass the guard; everything else is wrapped in
// the bearer-token check. Middleware is applied outermost-first.
func NewAdapter(store storage.Store, provider auth.Provider, pages pagination.Config, middlewares ...transport.Middleware) *Adapter {
	a := &Adapter{
		store:    store,
		provider: provider,
		guard:    auth.NewGuard(store),
		pages:    pages,
		mux:      http.NewServeMux(),
	}

	a.mux.HandleFunc("GET /articles", a.handleListArticles)
	a.mux.HandleFunc("GET /articles/{id}", a.handleGetArticle)
	a.mux.HandleFunc("POST /articles", a.guard.Require(a.handleCreateArticle))
	a.mux.HandleFunc("PATCH /articles/{id}", a.guard.Require(a.handleUpdateArticle))
	a.mux.HandleFunc("DELETE /articles/{id}", a.guard.Require(a.handleDeleteArticle))
	a.mux.HandleFunc("GET /articles/{id}/comments", a.handleListComments)
	a.mux.HandleFunc("POST /articles/{id}/comments", a.guard.Require(a.handleCreateComment))
	a.mux.HandleFunc("POST /registrations", a.handleCreateRegistration)
	a.mux.HandleFunc("POST /login", a.handleLogin)
	a.mux.HandleFunc("DELETE /logout", a.guard.Require(a.handleLogout))

	var h http.Handler = a.mux
	if len(middlewares) > 0 {
		h = transport.Chain(middlewares...)(h)
	}
	a.handler = h

	return a
}

// Handler returns the http.Handler for this adapter. Use this to
// integrate with an http.Server or test with httptest.
func (a *Adapter) Handler() http.Handler {
	return a.handler
}

// pathID parses the {id} path segment. A malformed ID behaves like a
// missing record.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, storage.ErrNotFound
	}
	return id, nil
}

// requestDocument is the JSON:API request body wrapper. Attributes are
// decoded into per-handler structs so unknown attributes are dropped,
// mirroring parameter permit-listing.
type requestDocument struct {
	Data struct {
		Attributes json.RawMessage `json:"attributes"`
	} `json:"data"`
}

// decodeAttributes reads the request body into dst via the
// data/attributes wrapper. An empty or malformed body leaves dst
// zero-valued, which downstream validation reports field by field.
func decodeAttributes(r *http.Request, dst any) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err != nil {
		return
	}
	var doc requestDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return
	}
	if len(doc.Data.Attributes) == 0 {
		return
	}
	_ = json.Unmarshal(doc.Data.Attributes, dst)
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
