// Package http serves liveness, readiness and build details
package http

import (
	"context"
	"net/http"
	"time"

	"gitplanet/internal/core/palette"
	"gitplanet/internal/core/version"
	"gitplanet/internal/modkit/httpkit"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(context.Context) error
}

// Palette is the color resolver as seen by meta
type Palette interface {
	Cache() palette.Cache
	Assisted() bool
}

// Deps are the handler dependencies, PG and CH are probed only if they ping
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
	Palette     Palette
}

const probeTimeout = 2 * time.Second

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// HealthResponse answers liveness
type HealthResponse struct {
	OK      bool   `json:"ok" example:"true"`
	Service string `json:"service" example:"gitplanet-api"`
	Started string `json:"started" example:"2026-05-01T13:00:00Z"`
	Now     string `json:"now" example:"2026-05-01T13:05:00Z"`
}

// ReadyCheck is one dependency probe, status is ok, fail, skipped or unknown
type ReadyCheck struct {
	Name   string `json:"name" example:"pg"`
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"connection refused"`
}

// ReadyResponse is ok when every probe passed, fail when any failed, degraded otherwise
type ReadyResponse struct {
	Status string       `json:"status" example:"degraded"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now" example:"2026-05-01T13:05:00Z"`
}

// ServiceResponse reports uptime in seconds
type ServiceResponse struct {
	Name    string `json:"name" example:"gitplanet-api"`
	Started string `json:"started" example:"2026-05-01T13:00:00Z"`
	Uptime  int64  `json:"uptime" example:"300"`
}

// PaletteResponse reports how many languages have a color without asking GitHub
type PaletteResponse struct {
	StaticLanguages int  `json:"static_languages" example:"64"`
	CachedLanguages int  `json:"cached_languages" example:"3"`
	Assisted        bool `json:"assisted" example:"true"`
}

type meta struct{ Deps }

// Register mounts the meta routes, /palette only when a resolver is wired
func Register(r httpkit.Router, d Deps) {
	m := meta{d}
	routes := map[string]func(*http.Request) (any, error){
		"/health":  m.health,
		"/ready":   m.ready,
		"/version": m.version,
		"/service": m.service,
	}
	if d.Palette != nil {
		routes["/palette"] = m.palette
	}
	for path, h := range routes {
		httpkit.Get(r, path, h)
	}
}

// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (m meta) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: m.ServiceName, Started: stamp(m.StartedAt), Now: stamp(time.Now())}, nil
}

func probe(ctx context.Context, name string, dep any) ReadyCheck {
	c := ReadyCheck{Name: name, Status: "unknown"}
	switch p := dep.(type) {
	case nil:
		c.Status = "skipped"
	case Pinger:
		c.Status = "ok"
		if err := p.Ping(ctx); err != nil {
			c.Status, c.Error = "fail", err.Error()
		}
	}
	return c
}

// @Summary Readiness probe with dependency checks
// @Description Clickhouse is optional, a skipped check degrades but does not fail
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Router /meta/ready [get]
func (m meta) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	out := ReadyResponse{
		Status: "ok",
		Checks: []ReadyCheck{probe(ctx, "pg", m.PG), probe(ctx, "ch", m.CH)},
		Now:    stamp(time.Now()),
	}
	for _, c := range out.Checks {
		if c.Status == "fail" {
			out.Status = "fail"
			break
		}
		if c.Status != "ok" {
			out.Status = "degraded"
		}
	}
	return out, nil
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (meta) version(*http.Request) (any, error) { return version.Info(), nil }

// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /meta/service [get]
func (m meta) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    m.ServiceName,
		Started: stamp(m.StartedAt),
		Uptime:  int64(time.Since(m.StartedAt).Seconds()),
	}, nil
}

// @Summary Language color coverage
// @Tags Meta
// @Produce json
// @Success 200 {object} PaletteResponse "ok"
// @Router /meta/palette [get]
func (m meta) palette(*http.Request) (any, error) {
	out := PaletteResponse{StaticLanguages: palette.Languages(), Assisted: m.Palette.Assisted()}
	if c := m.Palette.Cache(); c != nil {
		out.CachedLanguages = c.Len()
	}
	return out, nil
}
