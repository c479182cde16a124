package middleware

import (
	"net/http"
	"strings"

	"petsitter/pkg/logger"
)

// ContentTypeValidation rejects body-carrying requests whose Content-Type
// is not application/json before they reach a handler.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				if mediaType(r.Header.Get("Content-Type")) != "application/json" {
					log.Warn("Invalid Content-Type header",
						"request_id", requestIDOf(r),
						"content_type", r.Header.Get("Content-Type"),
						"path", r.URL.Path,
						"method", r.Method,
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnsupportedMediaType)
					_, _ = w.Write([]byte(`{"error":"Content-Type must be application/json"}`))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// mediaType strips any parameters ("application/json; charset=utf-8")
// down to the bare type.
func mediaType(header string) string {
	if i := strings.IndexByte(header, ';'); i >= 0 {
		header = header[:i]
	}
	return strings.TrimSpace(header)
}
