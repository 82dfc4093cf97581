package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestCreateArticle(t *testing.T) {
	a := newTestAdapter(t)
	register(t, a, "bob", "secret")
	token := login(t, a, "bob", "secret")

	w := do(t, a, "POST", "/articles", token, attributesBody(t, map[string]any{
		"title": "Hello", "content": "First post.", "slug": "hello",
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var doc struct {
		Data struct {
			ID         string `json:"id"`
			Type       string `json:"type"`
			Attributes struct {
				Title   string `json:"title"`
				Content string `json:"content"`
				Slug    string `json:"slug"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.Data.Type != "article" || doc.Data.ID == "" {
		t.Errorf("resource = %+v", doc.Data)
	}
	if doc.Data.Attributes.Title != "Hello" || doc.Data.Attributes.Slug != "hello" {
		t.Errorf("attributes = %+v", doc.Data.Attributes)
	}
}

func TestCreateArticleValidation(t *testing.T) {
	a := newTestAdapter(t)
	register(t, a, "bob", "secret")
	token := login(t, a, "bob", "secret")

	tests := []struct {
		name  string
		attrs map[string]any
		field string
	}{
		{"blank title", map[string]any{"content": "c", "slug": "s"}, "title"},
		{"blank content", map[string]any{"title": "t", "slug": "s"}, "content"},
		{"blank slug", map[string]any{"title": "t", "content": "c"}, "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, a, "POST", "/articles", token, attributesBody(t, tt.attrs))
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			var body map[string][]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if msgs := body[tt.field]; len(msgs) != 1 || msgs[0] != "can't be blank" {
				t.Errorf("%s = %v, want [can't be blank]", tt.field, msgs)
			}
		})
	}
}

func TestCreateArticleEmptyBody(t *testing.T) {
	a := newTestAdapter(t)
	register(t, a, "bob", "secret")
	token := login(t, a, "bob", "secret")

	// A missing body fails validation field by field, not with a parse
	// error.
	w := do(t, a, "POST", "/articles", token, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body map[string][]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(body) != 3 {
		t.Errorf("failed fields = %d, want 3: %v", len(body), body)
	}
}

func TestCreateArticleSlugTaken(t *testing.T) {
	a := newTestAdapter(t)
	register(t, a, "bob", "secret")
	token := login(t, a, "bob", "secret")

	createArticle(t, a, token, "First", "shared-slug")

	w := do(t, a, "POST", "/articles", token, attributesBody(t, map[string]any{
		"title": "Second", "content": "c", "slug": "shared-slug",
	}))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"slug":["has already been taken"]}` {
		t.Errorf("body = %s", got)
	}
}

func TestGetArticle(t *testing.T) {
	a := newTestAdapter(t)
	register(t, a, "bob", "secret")
	token := login(t, a, "bob", "secret")
	id := createArticle(t, a, token, "Hello", "hello")

	w := do(t, a, "GET", "/articles/"+id, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var doc struct {
		Data struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.Data.ID != id || doc.Data.Type != "article" {
		t.Errorf("resource = %+v, want id %s", doc.Data, id)
	}
}

func TestListArticlesOrder(t *testing.T) {
	a := newTestAdapter(t)
	register(t, a, "bob", "secret")
	token := login(t, a, "bob", "secret")

	for _, slug := range []string{"oldest", "middle", "newest"} {
		createArticle(t, a, token, "Title "+slug, slug)
	}

	w := do(t, a, "GET", "/articles", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var doc struct {
		Data []struct {
			Attributes struct {
				Slug string `json:"slug"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	want := []string{"newest", "middle", "oldest"}
	if len(doc.Data) != len(want) {
		t.Fatalf("len = %d, want %d", len(doc.Data), len(want))
	}
	for i, slug := range want {
		if doc.Data[i].Attributes.Slug != slug {
			t.Errorf("data[%d].slug = %q, want %q", i, doc.Data[i].Attributes.Slug, slug)
		}
	}
}

func TestListArticlesPagination(t *testing.T) {
	a := newTestAdapter(t)
	register(t, a, "bob", "secret")
	token := login(t, a, "bob", "secret")

	slugs := []string{"a", "b", "c", "d"}
	for _, slug := range slugs {
		createArticle(t, a, token, "Title "+slug, slug)
	}

	w := do(t, a, "GET", "/articles?page%5Bnumber%5D=2&page%5Bsize%5D=1", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var doc struct {
		Data  []json.RawMessage `json:"data"`
		Links map[string]string `json:"links"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(doc.Data) != 1 {
		t.Errorf("page length = %d, want 1", len(doc.Data))
	}

	want := map[string]string{
		"first": "/articles?page[number]=1&page[size]=1",
		"prev":  "/articles?page[number]=1&page[size]=1",
		"next":  "/articles?page[number]=3&page[size]=1",
		"last":  "/articles?page[number]=4&page[size]=1",
		"self":  "/articles?page[number]=2&page[size]=1",
	}
	if len(doc.Links) != len(want) {
		t.Errorf("links = %v", doc.Links)
	}
	for key, value := range want {
		if doc.Links[key] != value {
			t.Errorf("links[%s] = %q, want %q", key, doc.Links[key], value)
		}
	}
}

func TestListArticlesBoundaryLinks(t *testing.T) {
	a := newTestAdapter(t)
	register(t, a, "bob", "secret")
	token := login(t, a, "bob", "secret")
	for _, slug := range []string{"a", "b"} {
		createArticle(t, a, token, "Title "+slug, slug)
	}

	assertLinks := func(path, prev, next string) {
		t.Helper()
		w := do(t, a, "GET", path, "", "")
		var doc struct {
			Links map[string]string `json:"links"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if doc.Links["prev"] != prev {
			t.Errorf("%s prev = %q, want %q", path, doc.Links["prev"], prev)
		}
		if doc.Links["next"] != next {
			t.Errorf("%s next = %q, want %q", path, doc.Links["next"], next)
		}
	}

	// First page: prev present but empty. Last page: next present but
	// empty.
	assertLinks("/articles?page%5Bnumber%5D=1&page%5Bsize%5D=1", "", "/articles?page[number]=2&page[size]=1")
	assertLinks("/articles?page%5Bnumber%5D=2&page%5Bsize%5D=1", "/articles?page[number]=1&page[size]=1", "")
}

func TestUpdateArticle(t *testing.T) {
	a := newTestAdapter(t)
	register(t, a, "bob", "secret")
	token := login(t, a, "bob", "secret")
	id := createArticle(t, a, token, "Hello", "hello")

	// A partial update touches only the sent attributes.
	w := do(t, a, "PATCH", "/articles/"+id, token, attributesBody(t, map[string]any{
		"title": "Hello, revised",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var doc struct {
		Data struct {
			Attributes struct {
				Title string `json:"title"`
				Slug  string `json:"slug"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.Data.Attributes.Title != "Hello, revised" {
		t.Errorf("title = %q", doc.Data.Attributes.Title)
	}
	if doc.Data.Attributes.Slug != "hello" {
		t.Errorf("slug = %q, want untouched %q", doc.Data.Attributes.Slug, "hello")
	}
}

func TestUpdateArticleDoesNotResort(t *testing.T) {
	a := newTestAdapter(t)
	register(t, a, "bob", "secret")
	token := login(t, a, "bob", "secret")

	oldID := createArticle(t, a, token, "Old", "old")
	createArticle(t, a, token, "New", "new")

	w := do(t, a, "PATCH", "/articles/"+oldID, token, attributesBody(t, map[string]any{
		"title": "Old, revised",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, a, "GET", "/articles", "", "")
	var doc struct {
		Data []struct {
			Attributes struct {
				Slug string `json:"slug"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.Data[0].Attributes.Slug != "new" {
		t.Errorf("first slug = %q, want %q (update must not re-sort)", doc.Data[0].Attributes.Slug, "new")
	}
}

func TestUpdateForeignArticleForbidden(t *testing.T) {
	a := newTestAdapter(t)
	register(t, a, "bob", "secret")
	register(t, a, "alice", "hunter2")
	bobToken := login(t, a, "bob", "secret")
	aliceToken := login(t, a, "alice", "hunter2")

	id := createArticle(t, a, bobToken, "Bob's", "bobs-article")

	// A foreign article and a missing one answer identically.
	assertForbidden(t, do(t, a, "PATCH", "/articles/"+id, aliceToken,
		attributesBody(t, map[string]any{"title": "hijacked"})))
	assertForbidden(t, do(t, a, "PATCH", "/articles/9999", aliceToken,
		attributesBody(t, map[string]any{"title": "hijacked"})))
}

func TestDeleteArticle(t *testing.T) {
	a := newTestAdapter(t)
	register(t, a, "bob", "secret")
	token := login(t, a, "bob", "secret")
	id := createArticle(t, a, token, "Hello", "hello")

	w := do(t, a, "DELETE", "/articles/"+id, token, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, a, "GET", "/articles/"+id, "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestDeleteForeignArticleForbidden(t *testing.T) {
	a := newTestAdapter(t)
	register(t, a, "bob", "secret")
	register(t, a, "alice", "hunter2")
	bobToken := login(t, a, "bob", "secret")
	aliceToken := login(t, a, "alice", "hunter2")

	id := createArticle(t, a, bobToken, "Bob's", "bobs-article")

	assertForbidden(t, do(t, a, "DELETE", "/articles/"+id, aliceToken, ""))

	// Still there for its owner.
	if w := do(t, a, "GET", "/articles/"+id, "", ""); w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
