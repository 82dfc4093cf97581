// Package sqlite provides an embedded single-file implementation of
// storage.Store using the pure-Go modernc.org/sqlite driver. It is
// suited to single-node deployments and tests that need real SQL
// constraint behavior without a server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rhuss/artikel/pkg/api"
	"github.com/rhuss/artikel/pkg/storage"
)

// Store is a SQLite-backed storage.Store.
type Store struct {
	db *sql.DB
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// Open opens (or creates) the database at path and applies pending
// migrations. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// migrations is an ordered list of SQL migrations. Each migration runs
// exactly once, tracked by the schema_version table.
var migrations = []string{
	`
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	login TEXT NOT NULL DEFAULT '',
	password_digest TEXT NOT NULL DEFAULT '',
	provider TEXT NOT NULL,
	uid TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	avatar_url TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_standard_login ON users(login) WHERE provider = 'standard';
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_provider_uid ON users(provider, uid) WHERE uid <> '';

CREATE TABLE IF NOT EXISTS access_tokens (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	token TEXT NOT NULL UNIQUE,
	user_id INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_access_tokens_user_id ON access_tokens(user_id);

CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	user_id INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at DESC, id DESC);

CREATE TABLE IF NOT EXISTS comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content TEXT NOT NULL,
	article_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(article_id) REFERENCES articles(id) ON DELETE CASCADE,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_comments_article_id ON comments(article_id, created_at, id);
`,
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);`); err != nil {
		return err
	}

	for i, migration := range migrations {
		version := i + 1
		var exists int
		err := db.QueryRow("SELECT count(*) FROM schema_version WHERE version = ?", version).Scan(&exists)
		if err != nil {
			return err
		}
		if exists > 0 {
			continue
		}
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			return err
		}
	}
	return nil
}

// Timestamps are stored as unix microseconds so the DESC index keeps
// sub-second ordering.
func toUnix(t time.Time) int64   { return t.UTC().UnixMicro() }
func fromUnix(v int64) time.Time { return time.UnixMicro(v).UTC() }

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

// CreateUser inserts a user, enforcing the login and (provider, uid)
// uniqueness constraints.
func (s *Store) CreateUser(ctx context.Context, u *api.User) error {
	u.CreatedAt = stamp(u.CreatedAt)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (login, password_digest, provider, uid, name, url, avatar_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, u.Login, u.PasswordDigest, u.Provider, u.UID, u.Name, u.URL, u.AvatarURL, toUnix(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	return err
}

const userColumns = "id, login, password_digest, provider, uid, name, url, avatar_url, created_at"

func scanUser(row *sql.Row) (*api.User, error) {
	var u api.User
	var created int64
	err := row.Scan(&u.ID, &u.Login, &u.PasswordDigest, &u.Provider, &u.UID,
		&u.Name, &u.URL, &u.AvatarURL, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.CreatedAt = fromUnix(created)
	return &u, nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (*api.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// FindUserByLogin retrieves a standard-provider user by login.
func (s *Store) FindUserByLogin(ctx context.Context, login string) (*api.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE provider = ? AND login = ?",
		api.ProviderStandard, login))
}

// FindUserByProviderUID retrieves a user by external identity.
func (s *Store) FindUserByProviderUID(ctx context.Context, provider, uid string) (*api.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE provider = ? AND uid = ?", provider, uid))
}

// UpdateUserProfile refreshes the mutable profile attributes.
func (s *Store) UpdateUserProfile(ctx context.Context, u *api.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET login = ?, name = ?, url = ?, avatar_url = ? WHERE id = ?
	`, u.Login, u.Name, u.URL, u.AvatarURL, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("updating user: %w", err)
	}
	return requireRows(res)
}

// CreateToken inserts a token, enforcing value uniqueness.
func (s *Store) CreateToken(ctx context.Context, t *api.AccessToken) error {
	t.CreatedAt = stamp(t.CreatedAt)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO access_tokens (token, user_id, created_at) VALUES (?, ?, ?)
	`, t.Token, t.UserID, toUnix(t.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting token: %w", err)
	}
	t.ID, err = res.LastInsertId()
	return err
}

func scanToken(row *sql.Row) (*api.AccessToken, error) {
	var t api.AccessToken
	var created int64
	err := row.Scan(&t.ID, &t.Token, &t.UserID, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scanning token: %w", err)
	}
	t.CreatedAt = fromUnix(created)
	return &t, nil
}

// FindToken resolves a token value to the stored row.
func (s *Store) FindToken(ctx context.Context, token string) (*api.AccessToken, error) {
	return scanToken(s.db.QueryRowContext(ctx,
		"SELECT id, token, user_id, created_at FROM access_tokens WHERE token = ?", token))
}

// FindTokenByUser returns the user's current token, if any.
func (s *Store) FindTokenByUser(ctx context.Context, userID int64) (*api.AccessToken, error) {
	return scanToken(s.db.QueryRowContext(ctx, `
		SELECT id, token, user_id, created_at FROM access_tokens
		WHERE user_id = ? ORDER BY id LIMIT 1
	`, userID))
}

// DeleteToken revokes a token by value.
func (s *Store) DeleteToken(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM access_tokens WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return requireRows(res)
}

// CreateArticle inserts an article, enforcing slug uniqueness.
func (s *Store) CreateArticle(ctx context.Context, a *api.Article) error {
	a.CreatedAt = stamp(a.CreatedAt)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (title, content, slug, user_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.Title, a.Content, a.Slug, a.UserID, toUnix(a.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting article: %w", err)
	}
	a.ID, err = res.LastInsertId()
	return err
}

// GetArticle retrieves an article by ID.
func (s *Store) GetArticle(ctx context.Context, id int64) (*api.Article, error) {
	var a api.Article
	var created int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, content, slug, user_id, created_at FROM articles WHERE id = ?", id).
		Scan(&a.ID, &a.Title, &a.Content, &a.Slug, &a.UserID, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scanning article: %w", err)
	}
	a.CreatedAt = fromUnix(created)
	return &a, nil
}

// ListArticles returns one page of articles, newest first, plus the
// total count.
func (s *Store) ListArticles(ctx context.Context, offset, limit int) ([]*api.Article, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM articles").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting articles: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, slug, user_id, created_at FROM articles
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	var articles []*api.Article
	for rows.Next() {
		var a api.Article
		var created int64
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Slug, &a.UserID, &created); err != nil {
			return nil, 0, fmt.Errorf("scanning article: %w", err)
		}
		a.CreatedAt = fromUnix(created)
		articles = append(articles, &a)
	}
	return articles, total, rows.Err()
}

// UpdateArticle persists changed attributes; a non-zero CreatedAt
// rewrites the creation timestamp.
func (s *Store) UpdateArticle(ctx context.Context, a *api.Article) error {
	var (
		res sql.Result
		err error
	)
	if a.CreatedAt.IsZero() {
		res, err = s.db.ExecContext(ctx, `
			UPDATE articles SET title = ?, content = ?, slug = ? WHERE id = ?
		`, a.Title, a.Content, a.Slug, a.ID)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE articles SET title = ?, content = ?, slug = ?, created_at = ? WHERE id = ?
		`, a.Title, a.Content, a.Slug, toUnix(a.CreatedAt), a.ID)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("updating article: %w", err)
	}
	return requireRows(res)
}

// DeleteArticle removes an article; comments cascade.
func (s *Store) DeleteArticle(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}
	return requireRows(res)
}

// CreateComment inserts a comment for an existing article.
func (s *Store) CreateComment(ctx context.Context, c *api.Comment) error {
	c.CreatedAt = stamp(c.CreatedAt)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (content, article_id, user_id, created_at)
		VALUES (?, ?, ?, ?)
	`, c.Content, c.ArticleID, c.UserID, toUnix(c.CreatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("inserting comment: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

// ListComments returns one page of the article's comments in creation
// order, plus the total count.
func (s *Store) ListComments(ctx context.Context, articleID int64, offset, limit int) ([]*api.Comment, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM comments WHERE article_id = ?", articleID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting comments: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, article_id, user_id, created_at FROM comments
		WHERE article_id = ?
		ORDER BY created_at, id
		LIMIT ? OFFSET ?
	`, articleID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	var comments []*api.Comment
	for rows.Next() {
		var c api.Comment
		var created int64
		if err := rows.Scan(&c.ID, &c.Content, &c.ArticleID, &c.UserID, &created); err != nil {
			return nil, 0, fmt.Errorf("scanning comment: %w", err)
		}
		c.CreatedAt = fromUnix(created)
		comments = append(comments, &c)
	}
	return comments, total, rows.Err()
}

// HealthCheck verifies the database handle.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
