// Package repo persists auth sessions on Postgres
package repo

import (
	"context"
	_ "embed"
	"time"

	"gitplanet/internal/modkit/repokit"
	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/platform/store"
	"gitplanet/internal/services/auth/domain"
)

// Schema is the planet_sessions DDL
//
//go:embed schema.sql
var Schema string

// Repo is the session store
type Repo interface {
	Insert(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, token string) (domain.Session, error)
	Delete(ctx context.Context, token string) error
	Latest(ctx context.Context, userID int64, now time.Time) (domain.Session, bool, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
}

type (
	// PG is a Postgres binder for Repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for Repo
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// Migrate applies Schema
func Migrate(ctx context.Context, q repokit.Queryer) error {
	if _, err := q.Exec(ctx, Schema); err != nil {
		return perr.FromPostgres(err, "session migrate")
	}
	return nil
}

const columns = `token::text, user_id, login, access_token, expires_at, created_at`

func scan(row store.Row) (domain.Session, error) {
	var s domain.Session
	err := row.Scan(&s.Token, &s.UserID, &s.Login, &s.AccessToken, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}

func (r *queries) Insert(ctx context.Context, s domain.Session) error {
	err := store.ExecOne(ctx, r.q, `
		INSERT INTO planet_sessions (token, user_id, login, access_token, expires_at, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)`,
		s.Token, s.UserID, s.Login, s.AccessToken, s.ExpiresAt.UTC(), s.CreatedAt.UTC())
	if err != nil {
		return perr.FromPostgres(err, "session insert")
	}
	return nil
}

// Get returns NotFound for unknown tokens
func (r *queries) Get(ctx context.Context, token string) (domain.Session, error) {
	s, err := store.One(ctx, r.q, scan, `SELECT `+columns+` FROM planet_sessions WHERE token = $1::uuid`, token)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Session{}, err
		}
		return domain.Session{}, perr.FromPostgres(err, "session get")
	}
	return s, nil
}

// Delete is a no-op for unknown tokens
func (r *queries) Delete(ctx context.Context, token string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM planet_sessions WHERE token = $1::uuid`, token); err != nil {
		return perr.FromPostgres(err, "session delete")
	}
	return nil
}

// Latest returns the newest session of userID still live at now
func (r *queries) Latest(ctx context.Context, userID int64, now time.Time) (domain.Session, bool, error) {
	s, err := store.One(ctx, r.q, scan, `
		SELECT `+columns+` FROM planet_sessions
		 WHERE user_id = $1 AND expires_at > $2
		 ORDER BY expires_at DESC
		 LIMIT 1`, userID, now.UTC())
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Session{}, false, nil
		}
		return domain.Session{}, false, perr.FromPostgres(err, "session latest")
	}
	return s, true, nil
}

func (r *queries) Purge(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM planet_sessions WHERE expires_at <= $1`, before.UTC())
	if err != nil {
		return 0, perr.FromPostgres(err, "session purge")
	}
	return tag.RowsAffected(), nil
}
