// Package storage defines the persistence contract for users, access
// tokens, articles, and comments. Implementations must enforce the
// uniqueness invariants (standard login, token value, (provider, uid),
// article slug) with atomic constraint checks and surface violations
// as ErrConflict; callers treat a conflict as retry-once-then-fail,
// never as a silent duplicate.
package storage

import (
	"context"

	"github.com/rhuss/artikel/pkg/api"
)

// UserStore persists identity records.
type UserStore interface {
	// CreateUser inserts a user and fills ID and CreatedAt. Returns
	// ErrConflict when the login (standard provider) or the
	// (provider, uid) pair is already taken.
	CreateUser(ctx context.Context, u *api.User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id int64) (*api.User, error)

	// FindUserByLogin retrieves a standard-provider user by login.
	FindUserByLogin(ctx context.Context, login string) (*api.User, error)

	// FindUserByProviderUID retrieves a user by external identity.
	FindUserByProviderUID(ctx context.Context, provider, uid string) (*api.User, error)

	// UpdateUserProfile refreshes the mutable profile attributes
	// (login, name, url, avatar_url) of an existing user.
	UpdateUserProfile(ctx context.Context, u *api.User) error
}

// TokenStore persists opaque bearer tokens, one per user.
type TokenStore interface {
	// CreateToken inserts a token and fills ID and CreatedAt. Returns
	// ErrConflict when the token value already exists.
	CreateToken(ctx context.Context, t *api.AccessToken) error

	// FindToken resolves a token value to the stored row.
	FindToken(ctx context.Context, token string) (*api.AccessToken, error)

	// FindTokenByUser returns the user's current token, if any.
	FindTokenByUser(ctx context.Context, userID int64) (*api.AccessToken, error)

	// DeleteToken revokes a token by value.
	DeleteToken(ctx context.Context, token string) error
}

// ArticleStore persists articles.
type ArticleStore interface {
	// CreateArticle inserts an article and fills ID and CreatedAt.
	// Returns ErrConflict on a duplicate slug.
	CreateArticle(ctx context.Context, a *api.Article) error

	// GetArticle retrieves an article by ID.
	GetArticle(ctx context.Context, id int64) (*api.Article, error)

	// ListArticles returns one page of articles ordered by creation
	// time descending, plus the total count.
	ListArticles(ctx context.Context, offset, limit int) ([]*api.Article, int, error)

	// UpdateArticle persists changed title/content/slug. Returns
	// ErrConflict on a duplicate slug, ErrNotFound if the row is gone.
	UpdateArticle(ctx context.Context, a *api.Article) error

	// DeleteArticle removes an article and its comments.
	DeleteArticle(ctx context.Context, id int64) error
}

// CommentStore persists comments scoped to an article.
type CommentStore interface {
	// CreateComment inserts a comment and fills ID and CreatedAt.
	CreateComment(ctx context.Context, c *api.Comment) error

	// ListComments returns one page of the article's comments ordered
	// by creation time ascending, plus the total count.
	ListComments(ctx context.Context, articleID int64, offset, limit int) ([]*api.Comment, int, error)
}

// Store combines all persistence concerns behind one handle.
type Store interface {
	UserStore
	TokenStore
	ArticleStore
	CommentStore

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases connections and resources.
	Close() error
}
