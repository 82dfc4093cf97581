package http

import (
	"log/slog"
	"net/http"

	"github.com/rhuss/artikel/pkg/api"
	"github.com/rhuss/artikel/pkg/observability"
	"github.com/rhuss/artikel/pkg/transport"
)

func writeForbidden(w http.ResponseWriter) {
	transport.WriteErrors(w, http.StatusForbidden, api.ForbiddenError())
}

func writeNotFound(w http.ResponseWriter) {
	transport.WriteErrors(w, http.StatusNotFound, api.ErrorObject{
		Status: "404",
		Source: api.ErrorSource{Pointer: "/data/id"},
		Title:  "Record not found",
		Detail: "The requested resource does not exist.",
	})
}

// writeServerError logs the cause and hides it from the client.
func writeServerError(w http.ResponseWriter, err error) {
	observability.StoreErrorsTotal.Inc()
	slog.Error("request failed", "error", err)
	transport.WriteErrors(w, http.StatusInternalServerError, api.ErrorObject{
		Status: "500",
		Source: api.ErrorSource{Pointer: "/server"},
		Title:  "Internal server error",
		Detail: "Something went wrong.",
	})
}
