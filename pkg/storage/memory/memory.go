// Package memory provides an in-memory storage.Store for tests and
// lightweight deployments. All data is lost when the process exits.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rhuss/artikel/pkg/api"
	"github.com/rhuss/artikel/pkg/storage"
)

// Store is a mutex-guarded in-memory implementation of storage.Store.
type Store struct {
	mu       sync.RWMutex
	users    map[int64]*api.User
	tokens   map[int64]*api.AccessToken
	articles map[int64]*api.Article
	comments map[int64]*api.Comment
	nextID   map[string]int64
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:    make(map[int64]*api.User),
		tokens:   make(map[int64]*api.AccessToken),
		articles: make(map[int64]*api.Article),
		comments: make(map[int64]*api.Comment),
		nextID:   make(map[string]int64),
	}
}

func (s *Store) allocate(kind string) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

// CreateUser inserts a user, enforcing login uniqueness for standard
// users and (provider, uid) uniqueness for delegated ones.
func (s *Store) CreateUser(_ context.Context, u *api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if u.Provider == api.ProviderStandard && existing.Provider == api.ProviderStandard && existing.Login == u.Login {
			return storage.ErrConflict
		}
		if u.UID != "" && existing.Provider == u.Provider && existing.UID == u.UID {
			return storage.ErrConflict
		}
	}

	u.ID = s.allocate("user")
	u.CreatedAt = stamp(u.CreatedAt)
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(_ context.Context, id int64) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

// FindUserByLogin retrieves a standard-provider user by login.
func (s *Store) FindUserByLogin(_ context.Context, login string) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Provider == api.ProviderStandard && u.Login == login {
			clone := *u
			return &clone, nil
		}
	}
	return nil, storage.ErrNotFound
}

// FindUserByProviderUID retrieves a user by external identity.
func (s *Store) FindUserByProviderUID(_ context.Context, provider, uid string) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Provider == provider && u.UID == uid {
			clone := *u
			return &clone, nil
		}
	}
	return nil, storage.ErrNotFound
}

// UpdateUserProfile refreshes the mutable profile attributes.
func (s *Store) UpdateUserProfile(_ context.Context, u *api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return storage.ErrNotFound
	}
	existing.Login = u.Login
	existing.Name = u.Name
	existing.URL = u.URL
	existing.AvatarURL = u.AvatarURL
	return nil
}

// CreateToken inserts a token, enforcing value uniqueness.
func (s *Store) CreateToken(_ context.Context, t *api.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tokens {
		if existing.Token == t.Token {
			return storage.ErrConflict
		}
	}

	t.ID = s.allocate("token")
	t.CreatedAt = stamp(t.CreatedAt)
	clone := *t
	s.tokens[t.ID] = &clone
	return nil
}

// FindToken resolves a token value to the stored row.
func (s *Store) FindToken(_ context.Context, token string) (*api.AccessToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tokens {
		if t.Token == token {
			clone := *t
			return &clone, nil
		}
	}
	return nil, storage.ErrNotFound
}

// FindTokenByUser returns the user's current token, if any.
func (s *Store) FindTokenByUser(_ context.Context, userID int64) (*api.AccessToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tokens {
		if t.UserID == userID {
			clone := *t
			return &clone, nil
		}
	}
	return nil, storage.ErrNotFound
}

// DeleteToken revokes a token by value.
func (s *Store) DeleteToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.tokens {
		if t.Token == token {
			delete(s.tokens, id)
			return nil
		}
	}
	return storage.ErrNotFound
}

// CreateArticle inserts an article, enforcing slug uniqueness.
func (s *Store) CreateArticle(_ context.Context, a *api.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.articles {
		if existing.Slug == a.Slug {
			return storage.ErrConflict
		}
	}

	a.ID = s.allocate("article")
	a.CreatedAt = stamp(a.CreatedAt)
	clone := *a
	s.articles[a.ID] = &clone
	return nil
}

// GetArticle retrieves an article by ID.
func (s *Store) GetArticle(_ context.Context, id int64) (*api.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.articles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

// ListArticles returns a page of articles ordered by creation time
// descending, newest first. Ties break on ID descending so the order
// is stable.
func (s *Store) ListArticles(_ context.Context, offset, limit int) ([]*api.Article, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*api.Article, 0, len(s.articles))
	for _, a := range s.articles {
		clone := *a
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	return window(all, offset, limit), len(all), nil
}

// UpdateArticle persists changed attributes, enforcing slug uniqueness.
func (s *Store) UpdateArticle(_ context.Context, a *api.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.articles[a.ID]
	if !ok {
		return storage.ErrNotFound
	}
	for id, other := range s.articles {
		if id != a.ID && other.Slug == a.Slug {
			return storage.ErrConflict
		}
	}
	existing.Title = a.Title
	existing.Content = a.Content
	existing.Slug = a.Slug
	if !a.CreatedAt.IsZero() {
		existing.CreatedAt = a.CreatedAt
	}
	return nil
}

// DeleteArticle removes an article and its comments.
func (s *Store) DeleteArticle(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.articles, id)
	for cid, c := range s.comments {
		if c.ArticleID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

// CreateComment inserts a comment for an existing article.
func (s *Store) CreateComment(_ context.Context, c *api.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[c.ArticleID]; !ok {
		return storage.ErrNotFound
	}

	c.ID = s.allocate("comment")
	c.CreatedAt = stamp(c.CreatedAt)
	clone := *c
	s.comments[c.ID] = &clone
	return nil
}

// ListComments returns a page of the article's comments ordered by
// creation time ascending.
func (s *Store) ListComments(_ context.Context, articleID int64, offset, limit int) ([]*api.Comment, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*api.Comment, 0)
	for _, c := range s.comments {
		if c.ArticleID == articleID {
			clone := *c
			all = append(all, &clone)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	return window(all, offset, limit), len(all), nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func window[T any](items []T, offset, limit int) []T {
	if offset > len(items) {
		offset = len(items)
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
