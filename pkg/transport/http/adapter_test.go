package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rhuss/artikel/pkg/auth"
	"github.com/rhuss/artikel/pkg/pagination"
	"github.com/rhuss/artikel/pkg/storage/memory"
)

// fakeProvider resolves any non-empty code to a fixed profile, used to
// exercise the delegated login path without a network.
type fakeProvider struct {
	profile auth.Profile
	err     error
}

func (p *fakeProvider) Name() string { return "github" }

func (p *fakeProvider) Exchange(_ context.Context, code string) (auth.Profile, error) {
	if p.err != nil {
		return auth.Profile{}, p.err
	}
	return p.profile, nil
}

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	return NewAdapter(memory.New(), nil, pagination.DefaultConfig())
}

// do runs a request against the adapter and returns the recorder.
func do(t *testing.T, a *Adapter, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, r)
	return w
}

// attributesBody wraps attributes in the request document shape.
func attributesBody(t *testing.T, attrs map[string]any) string {
	t.Helper()

	body, err := json.Marshal(map[string]any{"data": map[string]any{"attributes": attrs}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return string(body)
}

// register creates a standard user through the API.
func register(t *testing.T, a *Adapter, login, password string) {
	t.Helper()

	w := do(t, a, "POST", "/registrations", "", attributesBody(t, map[string]any{
		"login": login, "password": password,
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("registration status = %d, body = %s", w.Code, w.Body.String())
	}
}

// login exchanges credentials for a bearer token value.
func login(t *testing.T, a *Adapter, loginName, password string) string {
	t.Helper()

	w := do(t, a, "POST", "/login", "", attributesBody(t, map[string]any{
		"login": loginName, "password": password,
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}

	var doc struct {
		Data struct {
			Attributes struct {
				Token string `json:"token"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal login response: %v", err)
	}
	if doc.Data.Attributes.Token == "" {
		t.Fatalf("no token in login response: %s", w.Body.String())
	}
	return doc.Data.Attributes.Token
}

// createArticle posts an article and returns its ID.
func createArticle(t *testing.T, a *Adapter, token, title, slug string) string {
	t.Helper()

	w := do(t, a, "POST", "/articles", token, attributesBody(t, map[string]any{
		"title": title, "content": "content of " + title, "slug": slug,
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("create article status = %d, body = %s", w.Code, w.Body.String())
	}

	var doc struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal article response: %v", err)
	}
	return doc.Data.ID
}

func assertForbidden(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d, body = %s", w.Code, http.StatusForbidden, w.Body.String())
	}
	want := `{"errors":[{"status":"403","source":{"pointer":"/headers/authorization"},` +
		`"title":"Not authorized","detail":"You have no right to access this resource."}]}`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestGuardedRoutesRequireToken(t *testing.T) {
	a := newTestAdapter(t)

	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/articles"},
		{"PATCH", "/articles/1"},
		{"DELETE", "/articles/1"},
		{"POST", "/articles/1/comments"},
		{"DELETE", "/logout"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assertForbidden(t, do(t, a, tt.method, tt.path, "", ""))
		})
	}
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	a := newTestAdapter(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/articles", http.StatusOK},
		{"GET", "/articles/999", http.StatusNotFound},
		{"GET", "/articles/999/comments", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := do(t, a, tt.method, tt.path, "", "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestMalformedIDBehavesLikeMissing(t *testing.T) {
	a := newTestAdapter(t)

	for _, path := range []string{"/articles/abc", "/articles/0", "/articles/-4"} {
		w := do(t, a, "GET", path, "", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want %d", path, w.Code, http.StatusNotFound)
		}
	}
}

func TestAdapterWithMiddleware(t *testing.T) {
	called := false
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	a := NewAdapter(memory.New(), nil, pagination.DefaultConfig(), mw)
	do(t, a, "GET", "/articles", "", "")

	if !called {
		t.Error("middleware not applied")
	}
}

func TestUnknownRoute(t *testing.T) {
	a := newTestAdapter(t)

	w := do(t, a, "GET", "/nope", "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func ExampleNewAdapter() {
	adapter := NewAdapter(memory.New(), nil, pagination.DefaultConfig())

	srv := httptest.NewServer(adapter.Handler())
	defer srv.Close()

	resp, _ := http.Get(srv.URL + "/articles")
	fmt.Println(resp.StatusCode)
	// Output: 200
}
