// Package domain defines refresher ports and types
package domain

import "time"

// Target is a planet due for reconciliation
type Target struct {
	UserID       int64
	Username     string
	ReconciledAt time.Time
}

// Report captures the outcome of one refresh pass
type Report struct {
	StartedAt time.Time
	Listed    int
	Refreshed int
	Failed    int
	Skipped   int
	Purged    int64
	TotalMS   int
	ErrText   string
}
