package httpkit

import (
	"net/http"
	"strings"

	perrs "gitplanet/internal/platform/errors"
	pnet "gitplanet/internal/platform/net"
)

// User returns the authenticated GitHub user id from the request context
func User(r *http.Request) (string, error) {
	uid := pnet.UserID(r.Context())
	if uid == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	return uid, nil
}

// Login returns the authenticated GitHub login from the request context
func Login(r *http.Request) string { return pnet.Login(r.Context()) }

// Bearer returns the raw bearer token from the Authorization header
func Bearer(r *http.Request) (string, error) {
	s := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer"
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	raw := strings.TrimSpace(s[len(prefix):])
	if raw == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	return raw, nil
}
