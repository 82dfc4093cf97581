package http

import (
	"errors"
	"net/http"

	"github.com/rhuss/artikel/pkg/api"
	"github.com/rhuss/artikel/pkg/auth"
	"github.com/rhuss/artikel/pkg/storage"
	"github.com/rhuss/artikel/pkg/transport"
)

// registrationAttributes is the permitted attribute set for sign-up.
type registrationAttributes struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (a *Adapter) handleCreateRegistration(w http.ResponseWriter, r *http.Request) {
	var attrs registrationAttributes
	decodeAttributes(r, &attrs)

	if errs := api.ValidateRegistration(attrs.Login, attrs.Password); errs.Any() {
		transport.WriteValidationErrors(w, errs)
		return
	}

	digest, err := auth.HashPassword(attrs.Password)
	if err != nil {
		writeServerError(w, err)
		return
	}

	user := &api.User{
		Login:          attrs.Login,
		PasswordDigest: digest,
		Provider:       api.ProviderStandard,
	}
	if err := a.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			errs := api.ValidationErrors{}
			errs.Add("login", api.MsgTaken)
			transport.WriteValidationErrors(w, errs)
			return
		}
		writeServerError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusCreated, api.Document{Data: api.UserResource(user)})
}
