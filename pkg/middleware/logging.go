package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"petsitter/pkg/logger"
)

type contextKey string

// RequestIDKey is the context key under which the per-request ID travels.
const RequestIDKey contextKey = "request_id"

// statusRecorder remembers the status code so the completion log line can
// report it. Only the first WriteHeader wins, matching net/http semantics.
type statusRecorder struct {
	http.ResponseWriter
	status     int
	headerSent bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.headerSent {
		return
	}
	sr.status = code
	sr.headerSent = true
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.headerSent {
		sr.WriteHeader(http.StatusOK)
	}
	return sr.ResponseWriter.Write(b)
}

// RequestLogging assigns every request an ID, stores it in the context,
// and logs a started/completed pair around the handler.
func RequestLogging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := newRequestID()
			r = r.WithContext(context.WithValue(r.Context(), RequestIDKey, id))

			log.Info("HTTP request started",
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			log.Info("HTTP request completed",
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func newRequestID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// requestIDOf pulls the request ID planted by RequestLogging, or ""
// when the middleware did not run (tests, bare handlers).
func requestIDOf(r *http.Request) string {
	if id, ok := r.Context().Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
