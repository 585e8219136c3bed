package module

import (
	"time"

	"gitplanet/internal/adapters/assistant"
	gh "gitplanet/internal/adapters/github"
	"gitplanet/internal/platform/config"
)

// Options controls planet behavior and its upstream clients
type Options struct {
	StaleAfter    time.Duration
	RefreshOnRead bool
	Serialize     bool
	LockTimeout   time.Duration

	GitHub    gh.Options
	Assistant assistant.Options
}

// FromConfig reads PLANET_, GITHUB_ and ASSISTANT_ values from process config
func FromConfig(cfg config.Conf) Options {
	pc := cfg.Prefix("PLANET_")
	return Options{
		StaleAfter:    pc.MayDuration("STALE_AFTER", 6*time.Hour),
		RefreshOnRead: pc.MayBool("REFRESH_ON_READ", true),
		Serialize:     pc.MayBool("SERIALIZE", true),
		LockTimeout:   pc.MayDuration("LOCK_TIMEOUT", 5*time.Second),
		GitHub:        gh.FromConfig(cfg.Prefix("GITHUB_")),
		Assistant:     assistant.FromConfig(cfg.Prefix("ASSISTANT_")),
	}
}
