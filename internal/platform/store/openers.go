package store

import (
	"context"
	"fmt"
	"time"

	chx "gitplanet/internal/platform/store/ch"
	"gitplanet/internal/platform/store/pg"
	pstrings "gitplanet/internal/platform/strings"
)

var (
	// sleep is a seam for the ping backoff
	sleep = time.Sleep

	openCHClient = func(ctx context.Context, cfg chx.Config) (chClient, error) {
		c, err := chx.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
)

// openPG opens pg and wraps it with our sql adapter once a ping succeeds
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  cfg.AppName,
	}, tracer)
	if err != nil {
		return nil, err
	}

	attempts := pstrings.IfZero(cfg.PG.ConnectRetries, 20)
	pingTimeout := pstrings.IfZero(cfg.PG.PingTimeout, 3*time.Second)
	const (
		backoffStart   = 150 * time.Millisecond
		backoffCeiling = 2 * time.Second
	)

	var lastErr error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Pool.Ping(toCtx)
		cancel()

		if lastErr == nil {
			return newPGAdapter(p), nil
		}
		if ctx.Err() != nil {
			p.Close()
			return nil, ctx.Err()
		}
		s.Log.Warn().Err(lastErr).Int("attempt", i+1).Msg("postgres not ready")
		sleep(backoff)
		backoff = min(backoff*2, backoffCeiling)
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
}

// openCH dials clickhouse, the client info carries the app name unless a role is configured
func openCH(ctx context.Context, cfg Config, s *Store) (Clickhouse, error) {
	c, err := openCHClient(ctx, chx.Config{
		URL:        cfg.CH.URL,
		ClientName: pstrings.IfZero(cfg.CH.ClientName, cfg.AppName),
		ClientTag:  cfg.CH.ClientTag,
	})
	if err != nil {
		return nil, err
	}
	s.Log.Debug().Str("client", pstrings.IfZero(cfg.CH.ClientName, cfg.AppName)).Msg("clickhouse connected")
	return newCHAdapter(c), nil
}
