// @title         GitPlanet API
// @version       0.1.0
// @description   Turns GitHub activity into a planet with achievements and titles
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"os/signal"
	"syscall"

	"gitplanet/internal/core/version"
	"gitplanet/internal/modkit/repokit"
	"gitplanet/internal/platform/config"
	"gitplanet/internal/platform/logger"
	phttp "gitplanet/internal/platform/net/http"
	"gitplanet/internal/platform/store"

	"gitplanet/internal/services/api"
	"gitplanet/internal/services/schema"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		logger.Get().Warn().Err(err).Msg("dotenv load failed")
	}
	version.SetService("gitplanet-api")

	root := config.New()
	apiCfg := root.Prefix("PLANET_API_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.FromConfig(root, "gitplanet", "api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	repokit.MustGuard(ctx, st)

	if apiCfg.MayBool("AUTO_MIGRATE", false) {
		if err := schema.Apply(ctx, st); err != nil {
			l.Panic().Err(err).Msg("schema apply failed")
		}
	}

	srv := phttp.NewServer(apiCfg)
	api.Mount(srv.Router(), api.Options{
		Config:         root,
		API:            apiCfg,
		Store:          st,
		Logger:         l,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
	})

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
