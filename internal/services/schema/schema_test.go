package schema

import (
	"context"
	"errors"
	"strings"
	"testing"

	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/platform/store"
)

type recPG struct {
	stmts []string
	fail  string
}

func (r *recPG) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	r.stmts = append(r.stmts, sql)
	if r.fail != "" && strings.Contains(sql, r.fail) {
		return nil, errors.New("permission denied")
	}
	return nil, nil
}
func (r *recPG) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (r *recPG) QueryRow(context.Context, string, ...any) store.Row        { return nil }
func (r *recPG) Tx(ctx context.Context, fn func(store.RowQuerier) error) error {
	return fn(r)
}

type recCH struct{ execs int }

func (c *recCH) Insert(context.Context, string, any) error                 { return nil }
func (c *recCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (c *recCH) Exec(context.Context, string, ...any) error                { c.execs++; return nil }
func (c *recCH) Close() error                                              { return nil }

func TestApply_RunsEveryStep(t *testing.T) {
	t.Parallel()
	pg, ch := &recPG{}, &recCH{}

	if err := Apply(context.Background(), &store.Store{PG: pg, CH: ch}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(pg.stmts) != 3 {
		t.Fatalf("statements = %d", len(pg.stmts))
	}
	for i, want := range []string{"planets", "planet_sessions", "planet_refresher_leases"} {
		if !strings.Contains(pg.stmts[i], want) {
			t.Fatalf("step %d missing %q", i, want)
		}
	}
	if ch.execs != 1 {
		t.Fatalf("clickhouse execs = %d", ch.execs)
	}
}

func TestApply_StopsOnFailure(t *testing.T) {
	t.Parallel()
	pg := &recPG{fail: "planet_sessions"}

	err := Apply(context.Background(), &store.Store{PG: pg})
	if err == nil {
		t.Fatalf("want error")
	}
	if len(pg.stmts) != 2 {
		t.Fatalf("ran %d statements after failure", len(pg.stmts))
	}
}

func TestApply_RequiresPostgres(t *testing.T) {
	t.Parallel()
	if err := Apply(context.Background(), &store.Store{}); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
}
