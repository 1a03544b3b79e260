// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"runtime/debug"

	xglog "github.com/ManuGH/fetchdemo/internal/log"
)

// Recoverer turns a handler panic into a 500 and a logged stack trace.
// http.ErrAbortHandler is re-panicked so the server aborts the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger := xglog.WithComponentFromContext(r.Context(), "http")
			logger.Error().
				Str(xglog.FieldEvent, "request.panic").
				Str(xglog.FieldMethod, r.Method).
				Str(xglog.FieldPath, r.URL.Path).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}
