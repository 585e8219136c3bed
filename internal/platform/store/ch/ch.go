// Package ch provides a clickhouse client built on clickhouse-go
package ch

import (
	"context"
	"errors"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures clickhouse client
type Config struct {
	URL string
	// ClientName is reported as the role in the clickhouse client info
	ClientName string
	ClientTag  string
}

// Rows is the result set returned by Query
type Rows = driver.Rows

// conn is the slice of driver.Conn this package uses
type conn interface {
	PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error)
	Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
	Exec(ctx context.Context, query string, args ...any) error
	Ping(ctx context.Context) error
	Close() error
}

var openConn = func(opt *clickhouse.Options) (conn, error) { return clickhouse.Open(opt) }

// CH wraps a native clickhouse connection
type CH struct {
	conn conn
}

// Open parses the DSN, opens a connection and pings it
func Open(ctx context.Context, cfg Config) (*CH, error) {
	if cfg.URL == "" {
		return nil, errors.New("ch: url is required")
	}
	opt, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("ch: parse dsn: %w", err)
	}
	opt.ClientInfo = BuildClientInfo(cfg.ClientName, cfg.ClientTag)

	c, err := openConn(opt)
	if err != nil {
		return nil, fmt.Errorf("ch: open: %w", err)
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ch: ping: %w", err)
	}
	return &CH{conn: c}, nil
}

// Insert appends rows to table in a single batch, column order must match the table
func (c *CH) Insert(ctx context.Context, table string, rows [][]any) error {
	if c == nil || c.conn == nil {
		return errors.New("ch: not connected")
	}
	if len(rows) == 0 {
		return nil
	}
	b, err := c.conn.PrepareBatch(ctx, "INSERT INTO "+table)
	if err != nil {
		return fmt.Errorf("ch: prepare %s: %w", table, err)
	}
	for i, r := range rows {
		if err := b.Append(r...); err != nil {
			_ = b.Abort()
			return fmt.Errorf("ch: append row %d: %w", i, err)
		}
	}
	if err := b.Send(); err != nil {
		return fmt.Errorf("ch: send %s: %w", table, err)
	}
	return nil
}

// Query runs a select
func (c *CH) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	if c == nil || c.conn == nil {
		return nil, errors.New("ch: not connected")
	}
	return c.conn.Query(ctx, sql, args...)
}

// Exec runs a statement without a result set, DDL mostly
func (c *CH) Exec(ctx context.Context, sql string, args ...any) error {
	if c == nil || c.conn == nil {
		return errors.New("ch: not connected")
	}
	return c.conn.Exec(ctx, sql, args...)
}

// Ping checks the connection
func (c *CH) Ping(ctx context.Context) error {
	if c == nil || c.conn == nil {
		return errors.New("ch: not connected")
	}
	return c.conn.Ping(ctx)
}

// Close closes the connection, safe on nil
func (c *CH) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
