// Package repo persists refresher leases and run history on Postgres
package repo

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"gitplanet/internal/modkit/repokit"
	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/services/refresher/domain"

	prepo "gitplanet/internal/services/planet/repo"
)

// Schema is the refresher DDL
//
//go:embed schema.sql
var Schema string

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

var _ domain.StorageRepo = (*queries)(nil)

// NewPG returns a Postgres binder for StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// Migrate applies Schema
func Migrate(ctx context.Context, q repokit.Queryer) error {
	if _, err := q.Exec(ctx, Schema); err != nil {
		return perr.FromPostgres(err, "refresher migrate")
	}
	return nil
}

func interval(d time.Duration) string { return fmt.Sprintf("%d seconds", int64(d/time.Second)) }

// Claim inserts or takes over an expired lease
func (r *queries) Claim(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO planet_refresher_leases (name, owner, claimed_at, expires_at)
		VALUES ($1, $2, now(), now() + ($3)::interval)
		ON CONFLICT (name) DO UPDATE
		SET owner = EXCLUDED.owner, claimed_at = EXCLUDED.claimed_at, expires_at = EXCLUDED.expires_at
		WHERE planet_refresher_leases.expires_at <= now() OR planet_refresher_leases.owner = EXCLUDED.owner`,
		name, owner, interval(ttl))
	if err != nil {
		return false, perr.FromPostgres(err, "refresher claim")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *queries) Release(ctx context.Context, name, owner string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM planet_refresher_leases WHERE name = $1 AND owner = $2`, name, owner); err != nil {
		return perr.FromPostgres(err, "refresher release")
	}
	return nil
}

// Stale reads through the planet repo
func (r *queries) Stale(ctx context.Context, before time.Time, limit int) ([]domain.Target, error) {
	rows, err := prepo.NewPG().Bind(r.q).Stale(ctx, before, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Target, len(rows))
	for i, s := range rows {
		out[i] = domain.Target{UserID: s.UserID, Username: s.Username, ReconciledAt: s.ReconciledAt}
	}
	return out, nil
}

func (r *queries) Finish(ctx context.Context, rep domain.Report) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO planet_refresher_runs
			(started_at, listed, refreshed, failed, skipped, purged, total_ms, err_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rep.StartedAt.UTC(), rep.Listed, rep.Refreshed, rep.Failed, rep.Skipped, rep.Purged, rep.TotalMS, rep.ErrText)
	if err != nil {
		return perr.FromPostgres(err, "refresher finish")
	}
	return nil
}
