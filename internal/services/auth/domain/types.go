// Package domain holds the auth types and ports
package domain

import "time"

// Session is an issued sign-in, Token is the opaque bearer value
type Session struct {
	Token       string
	UserID      int64
	Login       string
	AccessToken string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Expired reports whether s is no longer usable at now
func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// Viewer is the GitHub account behind an OAuth access token
type Viewer struct {
	ID    int64
	Login string
}

// Issued is returned to the client after a successful callback
type Issued struct {
	Token     string    `json:"token" example:"0b8f3c4e-7d3a-4d39-9a57-2c1f0f6f2d11"`
	UserID    int64     `json:"user_id" example:"583231"`
	Login     string    `json:"login" example:"octocat"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Me describes the signed in caller
type Me struct {
	UserID    int64     `json:"user_id" example:"583231"`
	Login     string    `json:"login" example:"octocat"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssuedOf exposes s without its GitHub access token
func IssuedOf(s Session) Issued {
	return Issued{Token: s.Token, UserID: s.UserID, Login: s.Login, ExpiresAt: s.ExpiresAt}
}
