// Package api provides the HTTP API for the application
package api

import (
	"context"
	"time"

	"gitplanet/internal/platform/config"
	"gitplanet/internal/platform/logger"
	phttp "gitplanet/internal/platform/net/http"
	"gitplanet/internal/platform/store"

	"gitplanet/internal/modkit"
	"gitplanet/internal/modkit/httpkit"
	"gitplanet/internal/modkit/module"
	"gitplanet/internal/modkit/swaggerkit"

	metamod "gitplanet/internal/services/api/meta/module"
	authmod "gitplanet/internal/services/auth/module"
	pdomain "gitplanet/internal/services/planet/domain"
	planetmod "gitplanet/internal/services/planet/module"
)

// Options are the API options
type Options struct {
	// Config is the unprefixed process config, modules pick their own prefixes
	Config config.Conf
	// API is the PLANET_API_ scoped view
	API            config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) []module.Module {
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// meta and auth answer quickly, planets hold event streams open
	quick := modkit.WithMiddlewares(httpkit.Timeout(opt.API.MayDuration("REQUEST_TIMEOUT", 15*time.Second)))

	// auth first, planets import its ports
	auth := authmod.New(deps, quick)
	ax := module.MustPortsOf[authmod.Exports](auth)

	planets := planetmod.New(deps, modkit.WithPorts(planetmod.Imports{
		Auth:        ax.Auth,
		Credentials: ax.Service,
	}))
	px := module.MustPortsOf[planetmod.Exports](planets)

	// signing in reconciles the user's planet with their own token
	ax.Service.SetLoginHook(func(ctx context.Context, userID int64, login, token string) error {
		_, err := px.Service.Reconcile(ctx, pdomain.Identity{UserID: userID, Login: login}, token)
		return err
	})

	mods := []module.Module{
		metamod.New(deps, quick, modkit.WithPorts(metamod.Imports{Palette: px.Palette})),
		auth,
		planets,
	}

	stack := httpkit.CommonStack(httpkit.StackOptions{
		Origins: opt.API.MayCSV("CORS_ORIGINS", nil),
		Slow:    opt.API.MayDuration("SLOW_REQUEST", 2*time.Second),
	})
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
	return mods
}
