package httpkit

import (
	"net/http"
	"time"

	phttp "gitplanet/internal/platform/net/http"
	"gitplanet/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	// Origins allowed by CORS, empty allows none
	Origins []string
	// Slow marks slower requests as warn in the access log
	Slow time.Duration
}

// CommonStack returns the baseline middleware slice for the api scope
// It carries no request timeout so event streams stay open, use Timeout per route group
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.RecoverJSON,
		middleware.NoCache,
		middleware.AccessLog(o.Slow),
		middleware.CORS(middleware.CORSOptions{
			AllowedOrigins:   o.Origins,
			AllowCredentials: len(o.Origins) > 0,
		}),
		middleware.Compress(),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes,
	}
}

// Timeout cancels the request context after d
func Timeout(d time.Duration) func(http.Handler) http.Handler { return middleware.Timeout(d) }

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}
