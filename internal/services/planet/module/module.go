// Package module wires planets into the API using modkit
package module

import (
	"context"

	"gitplanet/internal/adapters/meteor"
	"gitplanet/internal/core/palette"
	"gitplanet/internal/modkit"
	"gitplanet/internal/modkit/httpkit"
	"gitplanet/internal/platform/net/middleware"
	"gitplanet/internal/services/planet/domain"
	phttp "gitplanet/internal/services/planet/http"
)

// Imports are the ports this module needs from the auth module
type Imports struct {
	Auth        middleware.AuthPort
	Credentials domain.CredentialPort
}

// Exports are the ports other modules may use
type Exports struct {
	Service domain.ServicePort
	Palette *palette.Resolver
	Hub     *meteor.Hub
}

// New builds the planet module from the auth imports
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("planets"),
		modkit.WithPrefix("/planets"),
	}, opts...)...)
	in := modkit.Imports[Imports](b)

	if deps.PG == nil {
		panic("planet module requires postgres")
	}
	hub := meteor.NewHub(0)
	parts := Assemble(context.Background(), deps, FromConfig(deps.Cfg), in.Credentials, hub)

	exports := Exports{Service: parts.Service, Palette: parts.Palette, Hub: hub}
	return b.Module(exports, func(r httpkit.Router) {
		phttp.Register(r, phttp.Deps{
			Service: parts.Service,
			Auth:    in.Auth,
			Stream:  hub,
			History: parts.Recorder,
		})
	})
}
