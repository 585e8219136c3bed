package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"gitplanet/internal/platform/config"
	"gitplanet/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// Server owns the root chi mux and the listener
type Server struct {
	mux   *chi.Mux
	srv   *stdhttp.Server
	grace time.Duration
}

// NewServer listens on PORT (default :4000) and drains for SHUTDOWN_GRACE
func NewServer(cfg config.Conf) *Server {
	mux := chi.NewRouter()
	return &Server{
		mux:   mux,
		grace: cfg.MayDuration("SHUTDOWN_GRACE", 10*time.Second),
		srv: &stdhttp.Server{
			Addr:              cfg.MayString("PORT", ":4000"),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Router() Router            { return AdaptChi(s.mux) }
func (s *Server) Handler() stdhttp.Handler { return s.mux }
func (s *Server) Addr() string             { return s.srv.Addr }

// Run serves until ctx ends or the listener fails, in-flight requests get the grace period
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", s.srv.Addr).Msg("http listening")
		if err := s.srv.ListenAndServe(); !errors.Is(err, stdhttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("http shutting down")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.grace)
		defer cancel()
		return s.srv.Shutdown(sctx)
	})
	return g.Wait()
}
