// Package module mounts the meta endpoints
package module

import (
	"time"

	"gitplanet/internal/core/version"
	"gitplanet/internal/modkit"
	"gitplanet/internal/modkit/httpkit"

	metahttp "gitplanet/internal/services/api/meta/http"
)

// Imports are optional collaborators meta reports on
type Imports struct {
	Palette metahttp.Palette
}

// New builds the meta module, it exports nothing
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)
	in := modkit.Imports[Imports](b)

	d := metahttp.Deps{
		ServiceName: version.Info().Service,
		StartedAt:   time.Now(),
		PG:          deps.PG,
		CH:          deps.CH,
		Palette:     in.Palette,
	}
	return b.Module(nil, func(r httpkit.Router) { metahttp.Register(r, d) })
}
