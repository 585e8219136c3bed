// Package middleware holds the in house middlewares and thin chi adapters
package middleware

import (
	"net/http"
	"time"

	"gitplanet/internal/platform/logger"
	pnet "gitplanet/internal/platform/net"
)

// recorder remembers what the handler sent
type recorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *recorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += max(n, 0)
	return n, err
}

// Flush keeps meteor streams flowing through the log wrapper
func (w *recorder) Flush() { _ = http.NewResponseController(w.ResponseWriter).Flush() }

func (w *recorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// AccessLog writes one line per request, at warn once it took slow or longer
// slow of zero never warns
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			took := time.Since(start)

			log := logger.C(r.Context())
			ev := log.Info()
			if slow > 0 && took >= slow {
				ev = log.Warn()
			}
			ev.Str("request_id", pnet.RequestID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Int("bytes", rec.written).
				Dur("elapsed", took).
				Msg("request done")
		})
	}
}
