package httpkit

import (
	"context"
	"net/http"
	"strings"

	perrs "gitplanet/internal/platform/errors"
)

// TokenFunc resolves a session token to a GitHub user id and login
type TokenFunc func(ctx context.Context, token string) (userID string, login string, err error)

// Port implements middleware.AuthPort by reading Authorization and delegating to a TokenFunc
// a session cookie is accepted when no Authorization header is sent
type Port struct {
	parse  TokenFunc
	cookie string
}

// NewPortFunc builds a Port from a token resolver
func NewPortFunc(fn TokenFunc) *Port {
	return &Port{parse: fn}
}

// WithCookie also accepts the token from the named cookie
func (p *Port) WithCookie(name string) *Port {
	p.cookie = name
	return p
}

// Parse returns unauthorized when no token is sent or the resolver rejects it
func (p *Port) Parse(r *http.Request) (string, string, error) {
	raw, err := Bearer(r)
	if err != nil && p != nil && p.cookie != "" {
		if c, cerr := r.Cookie(p.cookie); cerr == nil && strings.TrimSpace(c.Value) != "" {
			raw, err = strings.TrimSpace(c.Value), nil
		}
	}
	if err != nil {
		return "", "", err
	}
	if p == nil || p.parse == nil {
		return "", "", perrs.Unauthorizedf("invalid bearer token")
	}
	uid, login, err := p.parse(r.Context(), raw)
	if err != nil {
		return "", "", perrs.Unauthorizedf("invalid bearer token")
	}
	return uid, login, nil
}
