package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/rhuss/artikel/pkg/api"
	"github.com/rhuss/artikel/pkg/auth"
	"github.com/rhuss/artikel/pkg/pagination"
	"github.com/rhuss/artikel/pkg/storage"
	"github.com/rhuss/artikel/pkg/transport"
)

func (a *Adapter) handleListArticles(w http.ResponseWriter, r *http.Request) {
	params := a.pages.Clamp(pagination.ParseParams(r.URL.Query()))

	articles, total, err := a.store.ListArticles(r.Context(), params.Offset(), params.Size)
	if err != nil {
		writeServerError(w, err)
		return
	}

	page := pagination.New(articles, total, params)
	transport.WriteJSON(w, http.StatusOK, pagination.Render(page, r.URL.Path, api.ArticleResource))
}

func (a *Adapter) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err == nil {
		var article *api.Article
		article, err = a.store.GetArticle(r.Context(), id)
		if err == nil {
			transport.WriteJSON(w, http.StatusOK, api.Document{Data: api.ArticleResource(article)})
			return
		}
	}
	if isNotFound(err) {
		writeNotFound(w)
		return
	}
	writeServerError(w, err)
}

// articleAttributes is the permitted attribute set for create/update.
// Pointers distinguish an absent attribute from an empty one so PATCH
// only touches what the client sent.
type articleAttributes struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Slug    *string `json:"slug"`
}

func (attrs *articleAttributes) apply(article *api.Article) {
	if attrs.Title != nil {
		article.Title = *attrs.Title
	}
	if attrs.Content != nil {
		article.Content = *attrs.Content
	}
	if attrs.Slug != nil {
		article.Slug = *attrs.Slug
	}
}

func (a *Adapter) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var attrs articleAttributes
	decodeAttributes(r, &attrs)

	article := &api.Article{UserID: user.ID}
	attrs.apply(article)

	if errs := article.Validate(); errs.Any() {
		transport.WriteValidationErrors(w, errs)
		return
	}

	if err := a.store.CreateArticle(r.Context(), article); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			errs := api.ValidationErrors{}
			errs.Add("slug", api.MsgTaken)
			transport.WriteValidationErrors(w, errs)
			return
		}
		writeServerError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusCreated, api.Document{Data: api.ArticleResource(article)})
}

// ownedArticle loads the article and checks it belongs to the current
// user. A missing article and a foreign one both come back as not
// owned, so existence of other users' resources does not leak.
func (a *Adapter) ownedArticle(r *http.Request) (*api.Article, bool, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, false, nil
	}
	article, err := a.store.GetArticle(r.Context(), id)
	if isNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	user := auth.UserFromContext(r.Context())
	if article.UserID != user.ID {
		return nil, false, nil
	}
	return article, true, nil
}

func (a *Adapter) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	article, owned, err := a.ownedArticle(r)
	if err != nil {
		writeServerError(w, err)
		return
	}
	if !owned {
		writeForbidden(w)
		return
	}

	var attrs articleAttributes
	decodeAttributes(r, &attrs)
	attrs.apply(article)

	if errs := article.Validate(); errs.Any() {
		transport.WriteValidationErrors(w, errs)
		return
	}

	// Keep the stored creation time; updates never re-sort the listing.
	article.CreatedAt = time.Time{}
	if err := a.store.UpdateArticle(r.Context(), article); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			errs := api.ValidationErrors{}
			errs.Add("slug", api.MsgTaken)
			transport.WriteValidationErrors(w, errs)
			return
		}
		writeServerError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, api.Document{Data: api.ArticleResource(article)})
}

func (a *Adapter) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	article, owned, err := a.ownedArticle(r)
	if err != nil {
		writeServerError(w, err)
		return
	}
	if !owned {
		writeForbidden(w)
		return
	}

	if err := a.store.DeleteArticle(r.Context(), article.ID); err != nil && !isNotFound(err) {
		writeServerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
