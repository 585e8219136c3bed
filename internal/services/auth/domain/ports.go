package domain

import (
	"context"
	"time"
)

// OAuthPort is the GitHub web flow
type OAuthPort interface {
	Configured() bool
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	Viewer(ctx context.Context, token string) (Viewer, error)
}

// LoginHook runs after a session is issued, the planet service reconciles here
type LoginHook func(ctx context.Context, userID int64, login, accessToken string) error

// ServicePort is the auth surface used by transport and other modules
type ServicePort interface {
	// Begin returns the GitHub authorize URL and the state it carries
	Begin() (authURL, state string, err error)
	// Complete exchanges code, issues a session and runs the login hook
	Complete(ctx context.Context, code string) (Session, error)
	// Resolve returns the live session behind token
	Resolve(ctx context.Context, token string) (Session, error)
	Logout(ctx context.Context, token string) error
	// AccessToken returns the newest live GitHub token stored for userID
	AccessToken(ctx context.Context, userID int64) (string, bool)
	// Purge deletes sessions that expired before cutoff
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}
