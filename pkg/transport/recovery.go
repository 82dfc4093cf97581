package transport

import (
	"log/slog"
	"net/http"

	"github.com/rhuss/artikel/pkg/api"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to 500 responses. The server keeps accepting requests
// after a recovered panic. No internals leak into the response body.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						"panic", rec,
						"path", r.URL.Path,
						"request_id", RequestIDFromContext(r.Context()),
					)
					WriteErrors(w, http.StatusInternalServerError, api.ErrorObject{
						Status: "500",
						Source: api.ErrorSource{Pointer: "/server"},
						Title:  "Internal server error",
						Detail: "Something went wrong.",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
