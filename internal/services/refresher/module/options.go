package module

import (
	"time"

	"gitplanet/internal/platform/config"
)

// Options for the refresher module
type Options struct {
	Every       time.Duration
	Limit       int
	Concurrency int
	LeaseTTL    time.Duration
}

// FromConfig fills options from environment
// REFRESHER_EVERY (default 15m) is the pause between passes
// REFRESHER_LIMIT (default 50) caps planets per pass
// REFRESHER_CONCURRENCY (default 4) bounds parallel reconciles
// REFRESHER_LEASE_TTL (default EVERY) is how long one pass may hold the lease
func FromConfig(cfg config.Conf) Options {
	r := cfg.Prefix("REFRESHER_")
	every := r.MayDuration("EVERY", 15*time.Minute)
	return Options{
		Every:       every,
		Limit:       r.MayInt("LIMIT", 50),
		Concurrency: r.MayInt("CONCURRENCY", 4),
		LeaseTTL:    r.MayDuration("LEASE_TTL", every),
	}
}
