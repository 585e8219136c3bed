package domain

import (
	"context"
	"time"
)

// RunnerPort is the entrypoint used by the CLI
type RunnerPort interface {
	// RunOnce performs one refresh pass, a held lease is a clean skip
	RunOnce(ctx context.Context) (Report, error)
	// Run schedules RunOnce every interval until ctx is done
	Run(ctx context.Context) error
}

// StorageRepo is everything the refresher persists
type StorageRepo interface {
	// Claim takes the named lease for ttl, false when another owner holds it
	Claim(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	// Release drops the lease if owner still holds it
	Release(ctx context.Context, name, owner string) error
	// Stale lists planets reconciled before cutoff, oldest first
	Stale(ctx context.Context, before time.Time, limit int) ([]Target, error)
	// Finish records a completed pass
	Finish(ctx context.Context, r Report) error
}

// Reconciler refreshes one planet
type Reconciler interface {
	Reconcile(ctx context.Context, userID int64, login, token string) error
}

// Credentials returns a stored GitHub token for a user
type Credentials interface {
	AccessToken(ctx context.Context, userID int64) (string, bool)
}

// SessionPurger drops expired sign ins
type SessionPurger interface {
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}
