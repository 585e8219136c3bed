// Package pg owns the pgx pool
package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is the pool configuration
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
	AppName  string // sent as application_name
}

// PG bundles the pool with the tracer its queries report to
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL and builds the pool, it does not ping
func Open(ctx context.Context, cfg Config, tracer QueryTracer) (*PG, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	pool, err := newPool(ctx, pc)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Close is safe on nil
func (p *PG) Close() {
	if p == nil || p.Pool == nil {
		return
	}
	p.Pool.Close()
}
