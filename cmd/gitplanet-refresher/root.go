package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gitplanet/internal/core/version"
	"gitplanet/internal/modkit"
	"gitplanet/internal/modkit/module"
	"gitplanet/internal/platform/config"
	"gitplanet/internal/platform/logger"
	"gitplanet/internal/platform/store"
	"gitplanet/internal/services/schema"

	rdom "gitplanet/internal/services/refresher/domain"
	refreshermod "gitplanet/internal/services/refresher/module"
)

var rootCmd = &cobra.Command{
	Use:           "gitplanet-refresher",
	Short:         "Reconcile planets whose snapshot went stale",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		version.SetService("gitplanet-refresher")
		return config.LoadDotenv()
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.Int("limit", 0, "planets per pass (default REFRESHER_LIMIT)")
	f.Int("concurrency", 0, "parallel reconciles (default REFRESHER_CONCURRENCY)")
	f.Bool("migrate", false, "apply the schema before the first pass")
}

// session owns the store and the runner for one command invocation
type session struct {
	ctx    context.Context
	stop   context.CancelFunc
	st     *store.Store
	runner rdom.RunnerPort
	log    *logger.Logger
}

func (s *session) close() {
	if err := s.st.Close(context.Background()); err != nil {
		s.log.Error().Err(err).Msg("failed to close store")
	}
	s.stop()
}

// open builds the runner from env, flags override env when set
func open(cmd *cobra.Command, every string) (*session, error) {
	root := config.New()
	l := logger.Named("refresher")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	st, err := store.Open(ctx, store.FromConfig(root, "gitplanet", "refresher"), store.WithLogger(*logger.Get()))
	if err != nil {
		stop()
		return nil, err
	}
	s := &session{ctx: ctx, stop: stop, st: st, log: l}
	if err := st.Guard(ctx); err != nil {
		s.close()
		return nil, err
	}

	flags := cmd.Flags()
	if migrate, _ := flags.GetBool("migrate"); migrate {
		if err := schema.Apply(ctx, st); err != nil {
			s.close()
			return nil, err
		}
	}

	opts := refreshermod.FromConfig(root)
	if v, _ := flags.GetInt("limit"); v > 0 {
		opts.Limit = v
	}
	if v, _ := flags.GetInt("concurrency"); v > 0 {
		opts.Concurrency = v
	}
	if every != "" {
		d, err := parseEvery(every)
		if err != nil {
			s.close()
			return nil, err
		}
		opts.Every = d
		opts.LeaseTTL = d
	}

	deps := modkit.Deps{Log: *l, Cfg: root, PG: st.PG, CH: st.CH}
	m := refreshermod.New(ctx, deps, opts)
	module.Register(m.Name(), m.Ports())
	s.runner = module.MustPortsOf[refreshermod.Ports](m).Runner
	return s, nil
}
