package http

import (
	"net/http"

	"github.com/rhuss/artikel/pkg/api"
	"github.com/rhuss/artikel/pkg/auth"
	"github.com/rhuss/artikel/pkg/pagination"
	"github.com/rhuss/artikel/pkg/transport"
)

func (a *Adapter) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err == nil {
		_, err = a.store.GetArticle(r.Context(), id)
	}
	if err != nil {
		if isNotFound(err) {
			writeNotFound(w)
			return
		}
		writeServerError(w, err)
		return
	}

	params := a.pages.Clamp(pagination.ParseParams(r.URL.Query()))

	comments, total, err := a.store.ListComments(r.Context(), id, params.Offset(), params.Size)
	if err != nil {
		writeServerError(w, err)
		return
	}

	page := pagination.New(comments, total, params)
	transport.WriteJSON(w, http.StatusOK, pagination.Render(page, r.URL.Path, api.CommentResource))
}

// commentAttributes is the permitted attribute set for create.
type commentAttributes struct {
	Content string `json:"content"`
}

func (a *Adapter) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err == nil {
		_, err = a.store.GetArticle(r.Context(), id)
	}
	if err != nil {
		if isNotFound(err) {
			writeNotFound(w)
			return
		}
		writeServerError(w, err)
		return
	}

	var attrs commentAttributes
	decodeAttributes(r, &attrs)

	user := auth.UserFromContext(r.Context())
	comment := &api.Comment{
		Content:   attrs.Content,
		ArticleID: id,
		UserID:    user.ID,
	}

	if errs := comment.Validate(); errs.Any() {
		transport.WriteValidationErrors(w, errs)
		return
	}

	if err := a.store.CreateComment(r.Context(), comment); err != nil {
		if isNotFound(err) {
			writeNotFound(w)
			return
		}
		writeServerError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusCreated, api.Document{Data: api.CommentResource(comment)})
}
