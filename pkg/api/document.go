// Package api defines the domain entities, the JSON:API document
// shapes, and the fixed error envelopes of the artikel service.
package api

import "strconv"

// Resource is a JSON:API resource object.
type Resource struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type"`
	Attributes    any                     `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// ResourceIdentifier references a related resource by id and type.
type ResourceIdentifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Relationship links a resource to a single related resource.
type Relationship struct {
	Data ResourceIdentifier `json:"data"`
}

// Document wraps a single resource for serialization.
type Document struct {
	Data Resource `json:"data"`
}

// ListDocument wraps a page of resources plus its navigation links.
type ListDocument struct {
	Data  []Resource `json:"data"`
	Links Links      `json:"links"`
}

// Links is the fixed page-link contract: always exactly these five
// keys. Prev and Next stay present with an empty value on the first
// and last page respectively.
type Links struct {
	First string `json:"first"`
	Prev  string `json:"prev"`
	Next  string `json:"next"`
	Last  string `json:"last"`
	Self  string `json:"self"`
}

// ArticleResource serializes an article.
func ArticleResource(a *Article) Resource {
	return Resource{
		ID:         formatID(a.ID),
		Type:       "article",
		Attributes: a,
	}
}

// CommentResource serializes a comment with its user and article
// relationships.
func CommentResource(c *Comment) Resource {
	return Resource{
		ID:         formatID(c.ID),
		Type:       "comment",
		Attributes: c,
		Relationships: map[string]Relationship{
			"user":    {Data: ResourceIdentifier{ID: formatID(c.UserID), Type: "user"}},
			"article": {Data: ResourceIdentifier{ID: formatID(c.ArticleID), Type: "article"}},
		},
	}
}

// UserResource serializes a user. The password digest is excluded by
// the User marshaling tags.
func UserResource(u *User) Resource {
	return Resource{
		ID:         formatID(u.ID),
		Type:       "user",
		Attributes: u,
	}
}

// AccessTokenResource serializes an access token.
func AccessTokenResource(t *AccessToken) Resource {
	return Resource{
		ID:         formatID(t.ID),
		Type:       "access_token",
		Attributes: t,
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
