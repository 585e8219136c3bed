// Package repo provides planet persistence on Postgres
package repo

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"time"

	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"

	"gitplanet/internal/core/achievement"
	"gitplanet/internal/core/titles"
	"gitplanet/internal/modkit/repokit"
	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/platform/store"
	"gitplanet/internal/services/planet/domain"
)

// Schema is the planets DDL, safe to apply repeatedly
//
//go:embed schema.sql
var Schema string

// Repo is the planet persistence surface used by the service layer
type Repo interface {
	Load(ctx context.Context, userID int64) (domain.Record, bool, error)
	ByUsername(ctx context.Context, username string) (domain.Record, error)
	Upsert(ctx context.Context, rec domain.Record) (domain.Record, error)
	SetActiveTitle(ctx context.Context, userID int64, t titles.Active) error
	AddVisit(ctx context.Context, username string) (int64, error)
	Stale(ctx context.Context, before time.Time, limit int) ([]domain.Stale, error)
}

type (
	// PG is a Postgres implementation of the planet repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// Migrate applies Schema
func Migrate(ctx context.Context, q repokit.Queryer) error {
	if _, err := q.Exec(ctx, Schema); err != nil {
		return perr.FromPostgres(err, "planet migrate")
	}
	return nil
}

// Slug is the case insensitive lookup key of a login
func Slug(username string) string { return slug.Make(username) }

const columns = `user_id, username, color, size_factor, name, main_language,
	total_commits, weekly_commits, language_bytes, achievements, inventory,
	active_title, visits, reconciled_at`

func scanRecord(row store.Row) (domain.Record, error) {
	var (
		r                             domain.Record
		langs, achs, inv, activeTitle []byte
	)
	if err := row.Scan(
		&r.UserID, &r.Username, &r.Color, &r.SizeFactor, &r.Name, &r.MainLanguage,
		&r.TotalCommits, &r.WeeklyCommits, &langs, &achs, &inv,
		&activeTitle, &r.Visits, &r.ReconciledAt,
	); err != nil {
		return domain.Record{}, err
	}
	if err := decode(langs, &r.LanguageBytes); err != nil {
		return domain.Record{}, err
	}
	if err := decode(achs, &r.Achievements); err != nil {
		return domain.Record{}, err
	}
	if err := decode(inv, &r.Inventory); err != nil {
		return domain.Record{}, err
	}
	var at *titles.Active
	if err := decode(activeTitle, &at); err != nil {
		return domain.Record{}, err
	}
	r.ActiveTitle = titles.CarryOver(at)
	if r.Achievements == nil {
		r.Achievements = achievement.State{}
	}
	return r, nil
}

func decode(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "planet decode column")
	}
	return nil
}

// Load returns the record for userID, ok is false when none exists
func (r *queries) Load(ctx context.Context, userID int64) (domain.Record, bool, error) {
	rec, err := store.One(ctx, r.q, scanRecord, `SELECT `+columns+` FROM planets WHERE user_id = $1`, userID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Record{}, false, nil
		}
		return domain.Record{}, false, perr.FromPostgres(err, "planet load")
	}
	return rec, true, nil
}

// ByUsername returns the record for a login, NotFound when none exists
func (r *queries) ByUsername(ctx context.Context, username string) (domain.Record, error) {
	rec, err := store.One(ctx, r.q, scanRecord, `SELECT `+columns+` FROM planets WHERE slug = $1`, Slug(username))
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Record{}, perr.NotFoundf("planet %s not found", username)
		}
		return domain.Record{}, perr.FromPostgres(err, "planet by username")
	}
	return rec, nil
}

// Upsert writes rec keyed by user id and returns the row as stored
// achievements and title words only grow: an unlock already stored keeps its time,
// the active title already stored wins over the carried one, visits are never reset
// a login now owned by rec releases its slug from any older holder first
func (r *queries) Upsert(ctx context.Context, rec domain.Record) (domain.Record, error) {
	langs, err := json.Marshal(nonNilLangs(rec.LanguageBytes))
	if err != nil {
		return domain.Record{}, perr.Wrapf(err, perr.ErrorCodeJSON, "planet encode languages")
	}
	achs, err := json.Marshal(rec.Achievements.Clone())
	if err != nil {
		return domain.Record{}, perr.Wrapf(err, perr.ErrorCodeJSON, "planet encode achievements")
	}
	inv, err := json.Marshal(nonNilWords(rec.Inventory))
	if err != nil {
		return domain.Record{}, perr.Wrapf(err, perr.ErrorCodeJSON, "planet encode inventory")
	}
	at, err := json.Marshal(rec.ActiveTitle)
	if err != nil {
		return domain.Record{}, perr.Wrapf(err, perr.ErrorCodeJSON, "planet encode active title")
	}
	s := Slug(rec.Username)

	const release = `
		UPDATE planets
		   SET slug = slug || '~' || user_id::text
		 WHERE slug = $1 AND user_id <> $2`
	if _, err := r.q.Exec(ctx, release, s, rec.UserID); err != nil {
		return domain.Record{}, perr.FromPostgres(err, "planet release slug")
	}

	// jsonb || keeps the right hand value on duplicate keys
	const upsert = `
		INSERT INTO planets (
			user_id, username, slug, color, size_factor, name, main_language,
			total_commits, weekly_commits, language_bytes, achievements, inventory,
			active_title, reconciled_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11::jsonb, $12::jsonb, $13::jsonb, $14)
		ON CONFLICT (user_id) DO UPDATE
		SET username       = EXCLUDED.username,
		    slug           = EXCLUDED.slug,
		    color          = EXCLUDED.color,
		    size_factor    = EXCLUDED.size_factor,
		    name           = EXCLUDED.name,
		    main_language  = EXCLUDED.main_language,
		    total_commits  = EXCLUDED.total_commits,
		    weekly_commits = EXCLUDED.weekly_commits,
		    language_bytes = EXCLUDED.language_bytes,
		    achievements   = EXCLUDED.achievements || planets.achievements,
		    inventory      = jsonb_build_object(
		        'prefixes', planet_words(planets.inventory->'prefixes', EXCLUDED.inventory->'prefixes'),
		        'suffixes', planet_words(planets.inventory->'suffixes', EXCLUDED.inventory->'suffixes')),
		    active_title   = COALESCE(planets.active_title, EXCLUDED.active_title),
		    reconciled_at  = EXCLUDED.reconciled_at
		RETURNING ` + columns
	stored, err := scanRecord(r.q.QueryRow(ctx, upsert,
		rec.UserID, rec.Username, s, rec.Color, rec.SizeFactor, rec.Name, rec.MainLanguage,
		rec.TotalCommits, rec.WeeklyCommits, string(langs), string(achs), string(inv),
		string(at), rec.ReconciledAt.UTC(),
	))
	if err != nil {
		return domain.Record{}, perr.FromPostgres(err, "planet upsert")
	}
	return stored, nil
}

// SetActiveTitle stores t for userID, NotFound when the planet does not exist
func (r *queries) SetActiveTitle(ctx context.Context, userID int64, t titles.Active) error {
	b, err := json.Marshal(t)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "planet encode active title")
	}
	tag, err := r.q.Exec(ctx, `UPDATE planets SET active_title = $2::jsonb WHERE user_id = $1`, userID, string(b))
	if err != nil {
		return perr.FromPostgres(err, "planet set active title")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("planet for user %d not found", userID)
	}
	return nil
}

// AddVisit bumps the visit counter and returns the new value
func (r *queries) AddVisit(ctx context.Context, username string) (int64, error) {
	n, err := store.Scalar[int64](ctx, r.q,
		`UPDATE planets SET visits = visits + 1 WHERE slug = $1 RETURNING visits`, Slug(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, perr.NotFoundf("planet %s not found", username)
		}
		return 0, perr.FromPostgres(err, "planet add visit")
	}
	return n, nil
}

// Stale lists planets reconciled before the cutoff, oldest first
func (r *queries) Stale(ctx context.Context, before time.Time, limit int) ([]domain.Stale, error) {
	if limit <= 0 {
		limit = 50
	}
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.Stale, error) {
		var s domain.Stale
		err := row.Scan(&s.UserID, &s.Username, &s.ReconciledAt)
		return s, err
	}, `SELECT user_id, username, reconciled_at FROM planets
	     WHERE reconciled_at < $1
	     ORDER BY reconciled_at ASC
	     LIMIT $2`, before.UTC(), limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "planet stale")
	}
	return out, nil
}

func nonNilLangs(m map[string]int64) map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	return m
}

func nonNilWords(inv titles.Inventory) titles.Inventory {
	if inv.Prefixes == nil {
		inv.Prefixes = []string{}
	}
	if inv.Suffixes == nil {
		inv.Suffixes = []string{}
	}
	return inv
}
