package transport

import (
	"encoding/json"
	"net/http"

	"github.com/rhuss/artikel/pkg/api"
)

// WriteJSON writes any payload with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// WriteErrors writes a JSON:API error envelope.
func WriteErrors(w http.ResponseWriter, status int, errs ...api.ErrorObject) {
	WriteJSON(w, status, api.ErrorsDocument{Errors: errs})
}

// WriteValidationErrors writes the field-level 422 response body.
func WriteValidationErrors(w http.ResponseWriter, errs api.ValidationErrors) {
	WriteJSON(w, http.StatusUnprocessableEntity, errs)
}
