package middleware

import (
	"net/http"

	"gitplanet/internal/platform/logger"
	pnet "gitplanet/internal/platform/net"
)

// AuthPort resolves the caller of a request, implemented by the auth service
type AuthPort interface {
	// Parse returns the GitHub user id and login for the request or an error
	Parse(r *http.Request) (userID string, login string, err error)
}

// Auth rejects requests the port cannot resolve, a nil port passes everything through
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			uid, login, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Failure(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithUser(r.Context(), uid, login)
			ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), login)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
