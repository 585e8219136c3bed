package module

import (
	"time"

	"gitplanet/internal/platform/config"
)

// Options configures sessions and cookies
type Options struct {
	SessionTTL    time.Duration
	SessionCookie string
	StateCookie   string
	SecureCookies bool
	AfterLogin    string
}

// FromConfig reads AUTH_ values from process config
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("AUTH_")
	return Options{
		SessionTTL:    c.MayDuration("SESSION_TTL", 720*time.Hour),
		SessionCookie: c.MayString("SESSION_COOKIE", "gitplanet_session"),
		StateCookie:   c.MayString("STATE_COOKIE", "gitplanet_oauth_state"),
		SecureCookies: c.MayBool("SECURE_COOKIES", false),
		AfterLogin:    c.MayString("AFTER_LOGIN", ""),
	}
}
