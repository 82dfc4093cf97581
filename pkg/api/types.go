package api

import "time"

// ProviderStandard marks users registered with a login/password pair.
// Users created through delegated login carry the external provider
// name instead ("github", "google").
const ProviderStandard = "standard"

// User is an identity record. Login is unique among standard users;
// UID is unique per external provider. PasswordDigest holds the bcrypt
// hash for standard users and is never serialized.
type User struct {
	ID             int64     `json:"-"`
	Login          string    `json:"login"`
	PasswordDigest string    `json:"-"`
	Provider       string    `json:"provider"`
	UID            string    `json:"-"`
	Name           string    `json:"name"`
	URL            string    `json:"url"`
	AvatarURL      string    `json:"avatar_url"`
	CreatedAt      time.Time `json:"-"`
}

// AccessToken is an opaque bearer token owned by exactly one user.
// The value is globally unique; there is at most one token per user,
// destroyed only by explicit revocation.
type AccessToken struct {
	ID        int64     `json:"-"`
	Token     string    `json:"token"`
	UserID    int64     `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// Article is a blog entry owned by the user who created it.
type Article struct {
	ID        int64     `json:"-"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Slug      string    `json:"slug"`
	UserID    int64     `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// Comment belongs to exactly one article and one user.
type Comment struct {
	ID        int64     `json:"-"`
	Content   string    `json:"content"`
	ArticleID int64     `json:"-"`
	UserID    int64     `json:"-"`
	CreatedAt time.Time `json:"-"`
}
