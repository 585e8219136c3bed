// Package module wires GitHub sign in into the API using modkit
package module

import (
	"context"
	"strconv"

	gh "gitplanet/internal/adapters/github"
	"gitplanet/internal/modkit"
	"gitplanet/internal/modkit/httpkit"
	"gitplanet/internal/platform/net/middleware"

	ahttp "gitplanet/internal/services/auth/http"
	arepo "gitplanet/internal/services/auth/repo"
	asvc "gitplanet/internal/services/auth/service"
)

// Exports are the ports other modules use
type Exports struct {
	// Auth resolves bearer tokens and session cookies
	Auth middleware.AuthPort
	// Service also satisfies the planet credential port
	Service *asvc.Svc
}

// NewService builds the session service without routes, the refresher uses it for stored tokens
func NewService(deps modkit.Deps, opts Options) *asvc.Svc {
	ghc := gh.NewClient(gh.FromConfig(deps.Cfg.Prefix("GITHUB_")))
	return asvc.New(deps.PG, arepo.NewPG(), asvc.Options{
		OAuth: NewOAuth(ghc),
		TTL:   opts.SessionTTL,
	})
}

// NewPort resolves bearer tokens and the session cookie against s
func NewPort(s *asvc.Svc, cookie string) middleware.AuthPort {
	return httpkit.NewPortFunc(func(ctx context.Context, token string) (string, string, error) {
		sess, err := s.Resolve(ctx, token)
		if err != nil {
			return "", "", err
		}
		return strconv.FormatInt(sess.UserID, 10), sess.Login, nil
	}).WithCookie(cookie)
}

// New builds the auth module, set the login hook on Exports.Service once planets exist
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("auth"),
		modkit.WithPrefix("/auth"),
	}, opts...)...)

	if deps.PG == nil {
		panic("auth module requires postgres")
	}
	cfg := FromConfig(deps.Cfg)
	svc := NewService(deps, cfg)
	port := NewPort(svc, cfg.SessionCookie)
	cookies := ahttp.Cookies{
		Session:    cfg.SessionCookie,
		State:      cfg.StateCookie,
		Secure:     cfg.SecureCookies,
		AfterLogin: cfg.AfterLogin,
	}
	return b.Module(Exports{Auth: port, Service: svc}, func(r httpkit.Router) {
		ahttp.Register(r, svc, port, cookies)
	})
}
