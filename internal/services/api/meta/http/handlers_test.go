package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"gitplanet/internal/core/palette"
	phttp "gitplanet/internal/platform/net/http"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func newRouter(d Deps) stdhttp.Handler {
	r := phttp.AdaptChi(chi.NewRouter())
	r.Route("/meta", func(mr phttp.Router) { Register(mr, d) })
	return r.Mux()
}

func get(t *testing.T, h stdhttp.Handler, path string, into any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))
	if into != nil && rec.Code == stdhttp.StatusOK {
		env := struct {
			Data any `json:"data"`
		}{Data: into}
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec.Code
}

func TestReady(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		pg   any
		ch   any
		want string
	}{
		{"all up", pinger{}, pinger{}, "ok"},
		{"no clickhouse", pinger{}, nil, "degraded"},
		{"pg down", pinger{err: errors.New("refused")}, pinger{}, "fail"},
		{"no ping method", struct{}{}, pinger{}, "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var out ReadyResponse
			if code := get(t, newRouter(Deps{PG: tc.pg, CH: tc.ch}), "/meta/ready", &out); code != stdhttp.StatusOK {
				t.Fatalf("status = %d", code)
			}
			if out.Status != tc.want || len(out.Checks) != 2 {
				t.Fatalf("ready = %+v", out)
			}
		})
	}
}

func TestHealthAndService(t *testing.T) {
	t.Parallel()
	h := newRouter(Deps{ServiceName: "gitplanet-api", StartedAt: time.Now().Add(-time.Minute)})

	var health HealthResponse
	if code := get(t, h, "/meta/health", &health); code != stdhttp.StatusOK || !health.OK || health.Service != "gitplanet-api" {
		t.Fatalf("health %d %+v", code, health)
	}
	var svc ServiceResponse
	if code := get(t, h, "/meta/service", &svc); code != stdhttp.StatusOK || svc.Uptime < 59 {
		t.Fatalf("service %d %+v", code, svc)
	}
	if code := get(t, h, "/meta/version", nil); code != stdhttp.StatusOK {
		t.Fatalf("version status = %d", code)
	}
}

func TestPalette(t *testing.T) {
	t.Parallel()
	if code := get(t, newRouter(Deps{}), "/meta/palette", nil); code != stdhttp.StatusNotFound {
		t.Fatalf("palette without resolver status = %d", code)
	}

	cache := palette.NewMemoryCache()
	cache.Set("Zig", "#ec915c")
	res := palette.New(palette.WithCache(cache))

	var out PaletteResponse
	if code := get(t, newRouter(Deps{Palette: res}), "/meta/palette", &out); code != stdhttp.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if out.StaticLanguages != palette.Languages() || out.CachedLanguages != 1 || out.Assisted {
		t.Fatalf("palette = %+v", out)
	}
}
