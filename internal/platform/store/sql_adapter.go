package store

import (
	"context"
	"errors"
	"time"

	"gitplanet/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// conn is the part of pgxpool.Pool and pgx.Tx the adapter runs sql on
type conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// traced is a RowQuerier over c that reports each statement to tracer
type traced struct {
	c      conn
	tracer pg.QueryTracer
	slowUS int64 // negative never flags
}

func (q traced) report(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if q.tracer == nil {
		return
	}
	us := time.Since(start).Microseconds()
	q.tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:       sql,
		Args:      args,
		ElapsedUS: us,
		Err:       err,
		Slow:      q.slowUS >= 0 && us >= q.slowUS,
	})
}

func (q traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := q.c.Exec(ctx, sql, args...)
	q.report(ctx, sql, args, start, err)
	return ct, err
}

func (q traced) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := q.c.Query(ctx, sql, args...)
	q.report(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return pgxRows{rs}, nil
}

// QueryRow reports once the row is scanned, pgx defers errors until then
func (q traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	r := q.c.QueryRow(ctx, sql, args...)
	return scanHook{r, func(err error) { q.report(ctx, sql, args, start, err) }}
}

// within hands fn a querier bound to tx and commits only if fn returns nil
func (q traced) within(ctx context.Context, tx pgx.Tx, fn func(RowQuerier) error) error {
	// rollback must run even when ctx is what failed
	bg := context.WithoutCancel(ctx)
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(bg)
			panic(p)
		}
	}()
	if err := fn(traced{c: tx, tracer: q.tracer, slowUS: q.slowUS}); err != nil {
		return errors.Join(err, tx.Rollback(bg))
	}
	return tx.Commit(ctx)
}

// pgAdapter is the pool backed TxRunner
type pgAdapter struct {
	traced
	p *pg.PG
}

func newPGAdapter(p *pg.PG) *pgAdapter {
	return &pgAdapter{
		traced: traced{c: p.Pool, tracer: p.Tracer, slowUS: int64(p.SlowMs) * 1000},
		p:      p,
	}
}

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil || a.p == nil || a.p.Pool == nil {
		return errors.New("pg: not open")
	}
	return a.p.Pool.Ping(ctx)
}

func (a *pgAdapter) Close() error {
	a.p.Close()
	return nil
}

// Tx rolls back when fn errors or panics
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	return a.within(ctx, tx, fn)
}

type scanHook struct {
	pgx.Row
	done func(error)
}

func (r scanHook) Scan(dst ...any) error {
	err := r.Row.Scan(dst...)
	r.done(err)
	return err
}

type pgxRows struct{ pgx.Rows }

func (r pgxRows) Columns() []string {
	fds := r.FieldDescriptions()
	names := make([]string, 0, len(fds))
	for _, fd := range fds {
		names = append(names, fd.Name)
	}
	return names
}
