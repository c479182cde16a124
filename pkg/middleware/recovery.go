package middleware

import (
	"net/http"
	"runtime/debug"

	"petsitter/pkg/logger"
)

// Recovery turns a handler panic into a logged 500 instead of a dropped
// connection. The stack trace goes to the log, never to the client.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				cause := recover()
				if cause == nil {
					return
				}

				log.Error("Panic recovered",
					"request_id", requestIDOf(r),
					"error", cause,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
