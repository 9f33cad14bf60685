package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/zuery/zuery/internal/models"
)

// Recovery turns a panic in a handler into a JSON 500 so one failed request
// never takes the server down. http.ErrAbortHandler is re-raised for
// net/http to handle.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error().
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Str("request_id", RequestIDFromContext(r.Context())).
				Str("path", r.URL.Path).
				Msg("panic recovered")
			models.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
