// Package service issues and resolves GitHub backed sessions
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"gitplanet/internal/modkit/repokit"
	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/platform/logger"
	"gitplanet/internal/services/auth/domain"
	"gitplanet/internal/services/auth/repo"
)

const defaultTTL = 30 * 24 * time.Hour

// Service is the auth service surface
type Service interface {
	domain.ServicePort
}

// Options configures Svc
type Options struct {
	OAuth   domain.OAuthPort
	TTL     time.Duration
	OnLogin domain.LoginHook
	Now     func() time.Time
}

// Svc implements Service on a session repo
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
	repo   repo.Repo
	opt    Options
	log    *logger.Logger
}

var _ Service = (*Svc)(nil)

// New constructs the auth service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], opt Options) *Svc {
	if db == nil {
		panic("auth.Service requires a non-nil TxRunner")
	}
	if binder == nil {
		panic("auth.Service requires a non-nil Repo binder")
	}
	if opt.TTL <= 0 {
		opt.TTL = defaultTTL
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Svc{db: db, binder: binder, repo: binder.Bind(db), opt: opt, log: logger.Named("auth")}
}

// SetLoginHook replaces the hook run after sign in
func (s *Svc) SetLoginHook(h domain.LoginHook) { s.opt.OnLogin = h }

// Begin returns the authorize URL and a fresh state value
func (s *Svc) Begin() (string, string, error) {
	if s.opt.OAuth == nil || !s.opt.OAuth.Configured() {
		return "", "", perr.Unavailablef("github sign in is not configured")
	}
	state := uuid.NewString()
	return s.opt.OAuth.AuthURL(state), state, nil
}

// Complete exchanges code for a token, looks up the viewer and issues a session
// a failing login hook is logged, the session stands
func (s *Svc) Complete(ctx context.Context, code string) (domain.Session, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Session{}, perr.WithField(perr.InvalidArgf("missing code"), "code")
	}
	if s.opt.OAuth == nil || !s.opt.OAuth.Configured() {
		return domain.Session{}, perr.Unavailablef("github sign in is not configured")
	}

	token, err := s.opt.OAuth.ExchangeCode(ctx, code)
	if err != nil {
		return domain.Session{}, err
	}
	v, err := s.opt.OAuth.Viewer(ctx, token)
	if err != nil {
		return domain.Session{}, err
	}
	if v.ID <= 0 || strings.TrimSpace(v.Login) == "" {
		return domain.Session{}, perr.Upstreamf("github returned an empty viewer")
	}

	now := s.opt.Now().UTC()
	sess := domain.Session{
		Token:       uuid.NewString(),
		UserID:      v.ID,
		Login:       v.Login,
		AccessToken: token,
		ExpiresAt:   now.Add(s.opt.TTL),
		CreatedAt:   now,
	}
	if err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).Insert(ctx, sess)
	}); err != nil {
		return domain.Session{}, perr.WithOp(err, "auth.complete")
	}
	s.log.Info().Int64("user_id", sess.UserID).Str("login", sess.Login).Msg("session issued")

	if s.opt.OnLogin != nil {
		if err := s.opt.OnLogin(ctx, sess.UserID, sess.Login, token); err != nil {
			s.log.Warn().Err(err).Str("login", sess.Login).Msg("login reconcile failed")
		}
	}
	return sess, nil
}

// Resolve maps a bearer token to its live session
func (s *Svc) Resolve(ctx context.Context, token string) (domain.Session, error) {
	if _, err := uuid.Parse(strings.TrimSpace(token)); err != nil {
		return domain.Session{}, perr.Unauthorizedf("invalid session")
	}
	sess, err := s.repo.Get(ctx, strings.TrimSpace(token))
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Session{}, perr.Unauthorizedf("invalid session")
		}
		return domain.Session{}, err
	}
	if sess.Expired(s.opt.Now()) {
		return domain.Session{}, perr.Unauthorizedf("session expired")
	}
	return sess, nil
}

// Logout deletes the session, unknown tokens are fine
func (s *Svc) Logout(ctx context.Context, token string) error {
	if _, err := uuid.Parse(strings.TrimSpace(token)); err != nil {
		return nil
	}
	return s.repo.Delete(ctx, strings.TrimSpace(token))
}

// AccessToken implements the planet credential port
func (s *Svc) AccessToken(ctx context.Context, userID int64) (string, bool) {
	sess, ok, err := s.repo.Latest(ctx, userID, s.opt.Now())
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("stored token lookup failed")
		return "", false
	}
	if !ok || sess.AccessToken == "" {
		return "", false
	}
	return sess.AccessToken, true
}

// Purge deletes sessions expired before cutoff
func (s *Svc) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		n, err = s.binder.Bind(q).Purge(ctx, cutoff)
		return err
	})
	if err != nil {
		return 0, perr.WithOp(err, "auth.purge")
	}
	if n > 0 {
		s.log.Info().Int64("purged", n).Msg("expired sessions removed")
	}
	return n, nil
}
