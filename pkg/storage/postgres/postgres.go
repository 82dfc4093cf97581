// Package postgres provides a PostgreSQL implementation of
// storage.Store. It uses pgx/v5 for connection pooling and relies on
// unique indexes for the login, token, (provider, uid), and slug
// invariants, surfacing violations as storage.ErrConflict.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/artikel/pkg/api"
	"github.com/rhuss/artikel/pkg/storage"
)

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// CreateUser inserts a user and fills ID and CreatedAt.
func (s *Store) CreateUser(ctx context.Context, u *api.User) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (login, password_digest, provider, uid, name, url, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, u.Login, u.PasswordDigest, u.Provider, u.UID, u.Name, u.URL, u.AvatarURL).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

const userColumns = "id, login, password_digest, provider, uid, name, url, avatar_url, created_at"

func scanUser(row pgx.Row) (*api.User, error) {
	var u api.User
	err := row.Scan(&u.ID, &u.Login, &u.PasswordDigest, &u.Provider, &u.UID,
		&u.Name, &u.URL, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (*api.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

// FindUserByLogin retrieves a standard-provider user by login.
func (s *Store) FindUserByLogin(ctx context.Context, login string) (*api.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE provider = $1 AND login = $2",
		api.ProviderStandard, login))
}

// FindUserByProviderUID retrieves a user by external identity.
func (s *Store) FindUserByProviderUID(ctx context.Context, provider, uid string) (*api.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE provider = $1 AND uid = $2",
		provider, uid))
}

// UpdateUserProfile refreshes the mutable profile attributes.
func (s *Store) UpdateUserProfile(ctx context.Context, u *api.User) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET login = $1, name = $2, url = $3, avatar_url = $4
		WHERE id = $5
	`, u.Login, u.Name, u.URL, u.AvatarURL, u.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateToken inserts a token and fills ID and CreatedAt.
func (s *Store) CreateToken(ctx context.Context, t *api.AccessToken) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO access_tokens (token, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, t.Token, t.UserID).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting token: %w", err)
	}
	return nil
}

func scanToken(row pgx.Row) (*api.AccessToken, error) {
	var t api.AccessToken
	err := row.Scan(&t.ID, &t.Token, &t.UserID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scanning token: %w", err)
	}
	return &t, nil
}

// FindToken resolves a token value to the stored row.
func (s *Store) FindToken(ctx context.Context, token string) (*api.AccessToken, error) {
	return scanToken(s.pool.QueryRow(ctx,
		"SELECT id, token, user_id, created_at FROM access_tokens WHERE token = $1", token))
}

// FindTokenByUser returns the user's current token, if any.
func (s *Store) FindTokenByUser(ctx context.Context, userID int64) (*api.AccessToken, error) {
	return scanToken(s.pool.QueryRow(ctx, `
		SELECT id, token, user_id, created_at FROM access_tokens
		WHERE user_id = $1 ORDER BY id LIMIT 1
	`, userID))
}

// DeleteToken revokes a token by value.
func (s *Store) DeleteToken(ctx context.Context, token string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM access_tokens WHERE token = $1", token)
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateArticle inserts an article and fills ID and CreatedAt.
func (s *Store) CreateArticle(ctx context.Context, a *api.Article) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO articles (title, content, slug, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, a.Title, a.Content, a.Slug, a.UserID).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting article: %w", err)
	}
	return nil
}

func scanArticle(row pgx.Row) (*api.Article, error) {
	var a api.Article
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Slug, &a.UserID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scanning article: %w", err)
	}
	return &a, nil
}

// GetArticle retrieves an article by ID.
func (s *Store) GetArticle(ctx context.Context, id int64) (*api.Article, error) {
	return scanArticle(s.pool.QueryRow(ctx,
		"SELECT id, title, content, slug, user_id, created_at FROM articles WHERE id = $1", id))
}

// ListArticles returns one page of articles, newest first, plus the
// total count.
func (s *Store) ListArticles(ctx context.Context, offset, limit int) ([]*api.Article, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM articles").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting articles: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, title, content, slug, user_id, created_at FROM articles
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	var articles []*api.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("listing articles: %w", err)
	}
	return articles, total, nil
}

// UpdateArticle persists changed title/content/slug. The creation
// timestamp is rewritten only when the caller supplies one, which
// re-sorts the article in the recent-first listing.
func (s *Store) UpdateArticle(ctx context.Context, a *api.Article) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if a.CreatedAt.IsZero() {
		tag, err = s.pool.Exec(ctx, `
			UPDATE articles SET title = $1, content = $2, slug = $3 WHERE id = $4
		`, a.Title, a.Content, a.Slug, a.ID)
	} else {
		tag, err = s.pool.Exec(ctx, `
			UPDATE articles SET title = $1, content = $2, slug = $3, created_at = $4 WHERE id = $5
		`, a.Title, a.Content, a.Slug, a.CreatedAt, a.ID)
	}
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("updating article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteArticle removes an article; comments cascade.
func (s *Store) DeleteArticle(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM articles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateComment inserts a comment and fills ID and CreatedAt.
func (s *Store) CreateComment(ctx context.Context, c *api.Comment) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO comments (content, article_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, c.Content, c.ArticleID, c.UserID).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isForeignKey(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

// ListComments returns one page of the article's comments in creation
// order, plus the total count.
func (s *Store) ListComments(ctx context.Context, articleID int64, offset, limit int) ([]*api.Comment, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT count(*) FROM comments WHERE article_id = $1", articleID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting comments: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, content, article_id, user_id, created_at FROM comments
		WHERE article_id = $1
		ORDER BY created_at, id
		OFFSET $2 LIMIT $3
	`, articleID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	var comments []*api.Comment
	for rows.Next() {
		var c api.Comment
		if err := rows.Scan(&c.ID, &c.Content, &c.ArticleID, &c.UserID, &c.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("listing comments: %w", err)
	}
	return comments, total, nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// isDuplicateKey reports a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKey reports a PostgreSQL foreign key violation (23503).
func isForeignKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
