package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	chx "gitplanet/internal/platform/store/ch"
	"gitplanet/internal/platform/testkit"

	"github.com/rs/zerolog"
)

// stubPG is a TxRunner without Ping
type stubPG struct{ memQ }

func (s *stubPG) Tx(_ context.Context, fn func(q RowQuerier) error) error { return fn(&s.memQ) }

type pingPG struct {
	stubPG
	err error
}

func (p *pingPG) Ping(context.Context) error { return p.err }

func TestGuard(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		s    *Store
		want []string
	}{
		{name: "nil store", want: []string{"nil store"}},
		{name: "nothing configured", s: &Store{}},
		{name: "pg without ping", s: &Store{PG: &stubPG{}}},
		{name: "pg up", s: &Store{PG: &pingPG{}}},
		{name: "pg down", s: &Store{PG: &pingPG{err: errors.New("refused")}}, want: []string{"pg: refused"}},
		{
			name: "both down",
			s: &Store{
				PG: &pingPG{err: errors.New("pg down")},
				CH: newCHAdapter(&fakeCH{pingErr: errors.New("ch down")}),
			},
			want: []string{"pg: pg down", "ch: ch down"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.s.Guard(context.Background())
			if len(tc.want) == 0 {
				if err != nil {
					t.Fatalf("Guard = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Guard passed")
			}
			for _, w := range tc.want {
				if !strings.Contains(err.Error(), w) {
					t.Fatalf("missing %q in %q", w, err)
				}
			}
		})
	}
}

func TestOpen_ClickhouseOnly(t *testing.T) {
	testkit.Serial(t)

	f := &fakeCH{}
	var got chx.Config
	testkit.Swap(t, &openCHClient, func(_ context.Context, cfg chx.Config) (chClient, error) {
		got = cfg
		return f, nil
	})

	ctx := context.Background()
	s, err := Open(ctx, Config{
		AppName: "gitplanet-api",
		CH:      CHConfig{Enabled: true, URL: "clickhouse://local:9000/default", ClientTag: "dev"},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.CH == nil || s.PG != nil {
		t.Fatalf("seams CH=%T PG=%T", s.CH, s.PG)
	}
	if got.ClientName != "gitplanet-api" || got.ClientTag != "dev" {
		t.Fatalf("client config = %+v", got)
	}
	if err := s.Close(ctx); err != nil || !f.closed {
		t.Fatalf("Close: %v closed=%v", err, f.closed)
	}
}

func TestOpen_Failures(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &openCHClient, func(context.Context, chx.Config) (chClient, error) {
		return nil, errors.New("refused")
	})

	cases := map[string]struct {
		cfg  Config
		opts []Option
	}{
		"clickhouse refused": {cfg: Config{CH: CHConfig{Enabled: true, URL: "clickhouse://x"}}},
		"bad pg url":         {cfg: Config{PG: PGConfig{Enabled: true, URL: "://bad", MaxConns: 1}}},
		"option error":       {opts: []Option{func(*Store) error { return errors.New("nope") }}},
	}
	for name, tc := range cases {
		if s, err := Open(context.Background(), tc.cfg, tc.opts...); err == nil || s != nil {
			t.Fatalf("%s: Open = %v, %v", name, s, err)
		}
	}
}

func TestOpen_WithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s, err := Open(context.Background(), Config{}, WithLogger(zerolog.New(&buf)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Log.Info().Msg("opened")
	if !strings.Contains(buf.String(), "opened") {
		t.Fatalf("store logger not used: %q", buf.String())
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close on empty store: %v", err)
	}
}
