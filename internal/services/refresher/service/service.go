// Package service reconciles stale planets on a schedule
package service

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/sync/errgroup"

	"gitplanet/internal/modkit/repokit"
	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/platform/logger"
	"gitplanet/internal/services/refresher/domain"
)

const leaseName = "planet-refresher"

// Config controls cadence and fan out
type Config struct {
	Every       time.Duration
	StaleAfter  time.Duration
	Limit       int
	Concurrency int
	LeaseTTL    time.Duration

	// PoolTokens lets users without a stored token refresh through the service pool
	PoolTokens bool
}

// Service implements domain.RunnerPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Cfg    Config

	Reconciler  domain.Reconciler
	Credentials domain.Credentials
	Sessions    domain.SessionPurger

	owner string
	now   func() time.Time
	log   *logger.Logger
}

var _ domain.RunnerPort = (*Service)(nil)

// New constructs the refresher
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], cfg Config, rec domain.Reconciler) *Service {
	if db == nil {
		panic("refresher.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("refresher.Service requires a non nil Repo binder")
	}
	if rec == nil {
		panic("refresher.Service requires a Reconciler")
	}
	if cfg.Every <= 0 {
		cfg.Every = 15 * time.Minute
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 6 * time.Hour
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 50
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = cfg.Every
	}
	host, _ := os.Hostname()
	return &Service{
		DB:         db,
		Binder:     binder,
		Cfg:        cfg,
		Reconciler: rec,
		owner:      fmt.Sprintf("%s:%d", host, os.Getpid()),
		now:        time.Now,
		log:        logger.Named("refresher"),
	}
}

// RunOnce refreshes up to Limit stale planets and purges expired sessions
func (s *Service) RunOnce(ctx context.Context) (domain.Report, error) {
	rep := domain.Report{StartedAt: s.now().UTC()}

	var claimed bool
	if err := repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
		var err error
		claimed, err = s.Binder.Bind(q).Claim(ctx, leaseName, s.owner, s.Cfg.LeaseTTL)
		return err
	}); err != nil {
		return rep, err
	}
	if !claimed {
		s.log.Debug().Msg("lease held elsewhere, skipping pass")
		return rep, nil
	}
	defer func() {
		if err := s.Binder.Bind(s.DB).Release(context.WithoutCancel(ctx), leaseName, s.owner); err != nil {
			s.log.Warn().Err(err).Msg("lease release failed")
		}
	}()

	targets, err := s.Binder.Bind(s.DB).Stale(ctx, rep.StartedAt.Add(-s.Cfg.StaleAfter), s.Cfg.Limit)
	if err != nil {
		return rep, err
	}
	rep.Listed = len(targets)

	var refreshed, failed, skipped atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.Cfg.Concurrency)
	for _, t := range targets {
		g.Go(func() error {
			token := ""
			if s.Credentials != nil {
				token, _ = s.Credentials.AccessToken(ctx, t.UserID)
			}
			if token == "" && !s.Cfg.PoolTokens {
				skipped.Add(1)
				return nil
			}
			if err := s.Reconciler.Reconcile(ctx, t.UserID, t.Username, token); err != nil {
				failed.Add(1)
				s.log.Warn().Err(err).Str("login", t.Username).Bool("contended", perr.IsRetryable(err)).Msg("refresh failed")
				return nil
			}
			refreshed.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	rep.Refreshed = int(refreshed.Load())
	rep.Failed = int(failed.Load())
	rep.Skipped = int(skipped.Load())

	if s.Sessions != nil {
		n, err := s.Sessions.Purge(ctx, rep.StartedAt)
		if err != nil {
			rep.ErrText = err.Error()
			s.log.Warn().Err(err).Msg("session purge failed")
		}
		rep.Purged = n
	}

	rep.TotalMS = int(s.now().Sub(rep.StartedAt).Milliseconds())
	if err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).Finish(ctx, rep)
	}); err != nil {
		s.log.Warn().Err(err).Msg("run record failed")
	}

	s.log.Info().
		Int("listed", rep.Listed).
		Int("refreshed", rep.Refreshed).
		Int("failed", rep.Failed).
		Int("skipped", rep.Skipped).
		Int64("purged", rep.Purged).
		Int("ms", rep.TotalMS).
		Msg("refresh pass done")
	return rep, nil
}

// Run starts a scheduler that calls RunOnce every Cfg.Every, the first pass starts immediately
func (s *Service) Run(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.Cfg.Every),
		gocron.NewTask(func() {
			if _, err := s.RunOnce(ctx); err != nil {
				s.log.Error().Err(err).Msg("refresh pass failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	s.log.Info().Dur("every", s.Cfg.Every).Int("limit", s.Cfg.Limit).Msg("refresher started")
	sched.Start()
	<-ctx.Done()
	return sched.Shutdown()
}
