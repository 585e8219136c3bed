package middleware

import (
	"compress/flate"
	"net/http"
	"time"

	pstrings "gitplanet/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// chi middlewares used as is
var (
	RequestID    = chimw.RequestID
	RealIP       = chimw.RealIP
	NoCache      = chimw.NoCache
	StripSlashes = chimw.StripSlashes
)

// Timeout cancels the request context after d
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// Heartbeat answers GET path with a bare 200 ahead of routing
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// Compress uses the fastest level, text/event-stream is not in chi's list so streams pass through
func Compress() func(http.Handler) http.Handler {
	return chimw.NewCompressor(flate.BestSpeed).Handler
}

// CORSOptions is the part of go-chi/cors the planet front end needs
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS fills methods, headers and max age when unset
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders:   pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Authorization", "Content-Type", "Last-Event-ID", "X-Request-ID"}),
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: o.AllowCredentials,
		MaxAge:           pstrings.IfZero(o.MaxAge, 300),
	})
}
