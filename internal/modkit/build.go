package modkit

import (
	"net/http"

	"gitplanet/internal/modkit/httpkit"
	pstrings "gitplanet/internal/platform/strings"
)

// Built is the resolved option set
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// Build applies opts in order, later options win
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:   c.name,
		Prefix: c.prefix,
		Mw:     append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:  c.ports,
	}
}

// Imports returns the ports handed in with WithPorts, or the zero T
func Imports[T any](b Built) T {
	v, _ := b.Ports.(T)
	return v
}

// Mounted is a Module made from a Built, its exports and a route function
type Mounted struct {
	name    string
	prefix  string
	mw      []func(http.Handler) http.Handler
	exports any
	routes  func(httpkit.Router)
}

// Module turns b into a Module, routes may be nil for modules without http
func (b Built) Module(exports any, routes func(httpkit.Router)) *Mounted {
	m := &Mounted{
		name:    pstrings.MustString(b.Name, "module name"),
		mw:      b.Mw,
		exports: exports,
		routes:  routes,
	}
	if routes != nil {
		m.prefix = pstrings.MustPrefix(b.Prefix)
	}
	return m
}

// Name is the module name
func (m *Mounted) Name() string { return m.name }

// Prefix is the normalized route prefix, empty without routes
func (m *Mounted) Prefix() string { return m.prefix }

// Ports returns the exports
func (m *Mounted) Ports() any { return m.exports }

// MountRoutes mounts the routes under the prefix with the module middleware
func (m *Mounted) MountRoutes(r httpkit.Router) {
	if m.routes == nil {
		return
	}
	r.Route(m.prefix, func(rr httpkit.Router) {
		if len(m.mw) > 0 {
			rr.Use(m.mw...)
		}
		m.routes(rr)
	})
}
