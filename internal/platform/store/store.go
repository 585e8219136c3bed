// Package store opens the postgres and clickhouse backends behind small seams
package store

import (
	"context"
	"errors"
	"fmt"

	"gitplanet/internal/platform/logger"
)

// Row is a single result row
type Row interface {
	Scan(dest ...any) error
}

// Rows is an open result set, callers must Close it
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a write did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is what repositories run sql against
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also open transactions
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam
type Clickhouse interface {
	Insert(ctx context.Context, table string, data any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Exec(ctx context.Context, sql string, args ...any) error
	Close() error
}

// Pinger reports readiness
type Pinger interface{ Ping(context.Context) error }

// Store holds whichever backends were enabled, disabled ones stay nil
type Store struct {
	Log logger.Logger
	PG  TxRunner
	CH  Clickhouse
}

// Option adjusts a Store before backends are opened
type Option func(*Store) error

// WithLogger hands log to the backends
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// Open applies opts then opens every backend cfg enables
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	if cfg.PG.Enabled {
		db, err := openPG(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.PG = db
	}
	if cfg.CH.Enabled {
		c, err := openCH(ctx, cfg, s)
		if err != nil {
			if s.PG != nil {
				_ = s.Close(ctx)
			}
			return nil, err
		}
		s.CH = c
	}
	return s, nil
}

// seams lists the configured backends by name
func (s *Store) seams() map[string]any {
	out := map[string]any{}
	if s.PG != nil {
		out["pg"] = s.PG
	}
	if s.CH != nil {
		out["ch"] = s.CH
	}
	return out
}

// Guard pings every backend that supports it and joins the failures
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	for _, name := range []string{"pg", "ch"} {
		p, ok := s.seams()[name].(Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases every backend, nil ones are skipped
func (s *Store) Close(context.Context) error {
	var errs []error
	for _, name := range []string{"ch", "pg"} {
		c, ok := s.seams()[name].(interface{ Close() error })
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
