// Package service reconciles GitHub activity into persisted planets
package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"gitplanet/internal/adapters/meteor"
	"gitplanet/internal/core/achievement"
	"gitplanet/internal/core/metrics"
	"gitplanet/internal/core/naming"
	"gitplanet/internal/core/titles"
	"gitplanet/internal/modkit/repokit"
	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/platform/logger"
	"gitplanet/internal/services/planet/domain"
	"gitplanet/internal/services/planet/repo"
)

const (
	defaultStaleAfter = 6 * time.Hour
	refreshTimeout    = time.Minute
)

// Service is the public service port
type Service interface{ domain.ServicePort }

// ColorResolver maps a language to a hex color and never fails
type ColorResolver interface {
	Resolve(ctx context.Context, language string) string
}

// Namer builds a planet name and never fails
type Namer interface {
	Name(ctx context.Context, language, color string, totalCommits int) string
}

// Options control service behavior
type Options struct {
	// Source is required
	Source domain.ActivitySource
	// Colors is required
	Colors ColorResolver
	// Namer is required
	Namer Namer

	Sink        meteor.Sink
	Credentials domain.CredentialPort

	// PoolTokens reports whether Source can fetch without a user token
	PoolTokens bool

	StaleAfter    time.Duration
	RefreshOnRead bool
	Serialize     bool

	Now func() time.Time
}

// Svc implements the service port
type Svc struct {
	repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner

	source domain.ActivitySource
	colors ColorResolver
	namer  Namer
	sink   meteor.Sink
	creds  domain.CredentialPort

	pool          bool
	staleAfter    time.Duration
	refreshOnRead bool

	locks    *keyedMutex
	inflight singleflight.Group
	now      func() time.Time
	log      *logger.Logger
}

// New constructs the service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], opt Options) *Svc {
	if db == nil {
		panic("planet.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("planet.Service requires a non nil Repo binder")
	}
	if opt.Source == nil || opt.Colors == nil || opt.Namer == nil {
		panic("planet.Service requires Source, Colors and Namer")
	}
	s := &Svc{
		repo:          binder.Bind(db),
		binder:        binder,
		db:            db,
		source:        opt.Source,
		colors:        opt.Colors,
		namer:         opt.Namer,
		sink:          opt.Sink,
		creds:         opt.Credentials,
		pool:          opt.PoolTokens,
		staleAfter:    opt.StaleAfter,
		refreshOnRead: opt.RefreshOnRead,
		now:           opt.Now,
		log:           logger.Named("planet"),
	}
	if s.sink == nil {
		s.sink = meteor.Nop{}
	}
	if s.staleAfter <= 0 {
		s.staleAfter = defaultStaleAfter
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opt.Serialize {
		s.locks = newKeyedMutex()
	}
	return s
}

// Reconcile fetches, derives and persists the planet of id
// an upstream failure aborts before anything is written
func (s *Svc) Reconcile(ctx context.Context, id domain.Identity, token string) (domain.View, error) {
	login := strings.TrimSpace(id.Login)
	if login == "" {
		return domain.View{}, perr.InvalidArgf("login is required")
	}
	if s.locks != nil {
		unlock := s.locks.Lock(strings.ToLower(login))
		defer unlock()
	}

	snap, err := s.source.Activity(ctx, login, token)
	if err != nil {
		return domain.View{}, upstream(err, login)
	}
	// the upstream id wins, a login may have moved to another account
	userID := snap.UserID
	if userID == 0 {
		userID = id.UserID
	}
	if userID == 0 {
		return domain.View{}, perr.Upstreamf("github returned no user id for %s", login)
	}
	if snap.Login != "" {
		login = snap.Login
	}

	now := s.now().UTC()
	stats := metrics.Aggregate(snap, now)
	color := s.colors.Resolve(ctx, stats.MainLanguage)
	size := metrics.SizeFactor(stats.TotalCommits)

	prev, found, err := s.repo.Load(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("planet load failed, treating as new")
		prev, found = domain.Record{}, false
	}

	name := s.name(ctx, stats, color, prev, found)

	achs, added := achievement.Evaluate(prev.Achievements, achievement.FactsFrom(stats, now), now)
	inv := titles.Map(achs, prev.Inventory)
	var carried *titles.Active
	if found {
		carried = &prev.ActiveTitle
	}

	rec := domain.Record{
		UserID:        userID,
		Username:      login,
		Color:         color,
		SizeFactor:    size,
		Name:          name,
		MainLanguage:  stats.MainLanguage,
		TotalCommits:  stats.TotalCommits,
		WeeklyCommits: stats.WeeklyCommits,
		LanguageBytes: stats.LanguageBytes,
		Achievements:  achs,
		Inventory:     inv,
		ActiveTitle:   titles.CarryOver(carried),
		Visits:        prev.Visits,
		ReconciledAt:  now,
	}

	var stored domain.Record
	err = s.db.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		stored, err = s.binder.Bind(q).Upsert(ctx, rec)
		return err
	})
	if err != nil {
		return domain.View{}, perr.WithOp(err, "planet.reconcile")
	}
	// an unlock the store already held keeps its older time and is not new
	added = slices.DeleteFunc(added, func(k achievement.Key) bool {
		return !stored.Achievements[k].UnlockedAt.Equal(rec.Achievements[k].UnlockedAt)
	})

	s.emit(ctx, stored, prev, found, added)

	s.log.Info().
		Int64("user_id", userID).
		Str("login", login).
		Int("total_commits", stored.TotalCommits).
		Int("unlocked", len(added)).
		Msg("planet reconciled")
	return domain.ViewOf(stored), nil
}

// ReconcileSelf reconciles a signed in user with their stored access token
func (s *Svc) ReconcileSelf(ctx context.Context, id domain.Identity) (domain.View, error) {
	if s.creds == nil {
		return domain.View{}, perr.Unauthorizedf("no stored credentials")
	}
	token, ok := s.creds.AccessToken(ctx, id.UserID)
	if !ok || token == "" {
		return domain.View{}, perr.Unauthorizedf("session has no github token, sign in again")
	}
	return s.Reconcile(ctx, id, token)
}

// name keeps a previously refined name while its inputs are unchanged
func (s *Svc) name(ctx context.Context, st metrics.Stats, color string, prev domain.Record, found bool) string {
	det, resolved := naming.Deterministic(st.MainLanguage, color, st.TotalCommits)
	if resolved {
		return det
	}
	if found && prev.Name != "" && !naming.HasPlaceholder(prev.Name) &&
		prev.MainLanguage == st.MainLanguage && prev.Color == color &&
		naming.Tier(prev.TotalCommits) == naming.Tier(st.TotalCommits) {
		return prev.Name
	}
	return s.namer.Name(ctx, st.MainLanguage, color, st.TotalCommits)
}

func (s *Svc) emit(ctx context.Context, rec, prev domain.Record, found bool, added []achievement.Key) {
	at := rec.ReconciledAt
	evs := []meteor.Event{meteor.New(meteor.KindPlanet, rec.Username, map[string]any{
		"planetName":       rec.Name,
		"planetColor":      rec.Color,
		"planetSizeFactor": rec.SizeFactor,
		"mainLanguage":     rec.MainLanguage,
		"totalCommits":     rec.TotalCommits,
	}, at)}
	for _, k := range added {
		evs = append(evs, meteor.New(meteor.KindAchievement, rec.Username, map[string]any{
			"key":  string(k),
			"name": rec.Achievements[k].Name,
		}, at))
	}
	if found && rec.TotalCommits > prev.TotalCommits {
		evs = append(evs, meteor.New(meteor.KindCommits, rec.Username, map[string]any{
			"delta": rec.TotalCommits - prev.TotalCommits,
			"total": rec.TotalCommits,
		}, at))
	}
	if err := s.sink.Publish(ctx, evs...); err != nil {
		s.log.Warn().Err(err).Str("login", rec.Username).Msg("meteor publish failed")
	}
}

// PublicView returns the planet of username with the display rule applied
// a stale planet is refreshed in the background when enabled
func (s *Svc) PublicView(ctx context.Context, username string) (domain.View, error) {
	rec, err := s.repo.ByUsername(ctx, username)
	if err != nil {
		return domain.View{}, err
	}
	if s.refreshOnRead && s.stale(rec) {
		s.refreshAsync(ctx, rec)
	}
	return domain.ViewOf(rec), nil
}

// Visit records a visit, reconciling first when the planet is missing or stale
func (s *Svc) Visit(ctx context.Context, username string) (domain.VisitOutput, error) {
	rec, err := s.repo.ByUsername(ctx, username)
	missing := perr.IsCode(err, perr.ErrorCodeNotFound)
	if err != nil && !missing {
		return domain.VisitOutput{}, err
	}

	var out domain.VisitOutput
	switch {
	case missing && !s.pool:
		return domain.VisitOutput{}, perr.NotFoundf("planet %s not found", username)
	case missing || s.stale(rec):
		v, rerr := s.Reconcile(ctx, domain.Identity{UserID: rec.UserID, Login: username}, "")
		if rerr != nil {
			if missing {
				return domain.VisitOutput{}, rerr
			}
			s.log.Warn().Err(rerr).Str("login", username).Msg("visit refresh failed, serving stored planet")
			out.Planet = domain.ViewOf(rec)
			break
		}
		out.Planet, out.Refreshed = v, true
	default:
		out.Planet = domain.ViewOf(rec)
	}

	n, err := s.repo.AddVisit(ctx, out.Planet.Username)
	if err != nil {
		return domain.VisitOutput{}, err
	}
	out.Planet.Visits = n
	return out, nil
}

// SaveActiveTitle sets the displayed title, both words must be in the inventory
func (s *Svc) SaveActiveTitle(ctx context.Context, userID int64, t titles.Active) (domain.View, error) {
	t.Prefix, t.Suffix = strings.TrimSpace(t.Prefix), strings.TrimSpace(t.Suffix)
	rec, found, err := s.repo.Load(ctx, userID)
	if err != nil {
		return domain.View{}, err
	}
	if !found {
		return domain.View{}, perr.NotFoundf("planet for user %d not found", userID)
	}
	if !rec.Inventory.Has(t) {
		return domain.View{}, perr.WithField(perr.InvalidArgf("title %q %q is not unlocked", t.Prefix, t.Suffix), "prefix")
	}
	if err := s.repo.SetActiveTitle(ctx, userID, t); err != nil {
		return domain.View{}, err
	}
	rec.ActiveTitle = t
	return domain.ViewOf(rec), nil
}

func (s *Svc) stale(rec domain.Record) bool {
	return s.now().Sub(rec.ReconciledAt) > s.staleAfter
}

// refreshAsync reconciles rec off the request path, concurrent calls for a user collapse
func (s *Svc) refreshAsync(ctx context.Context, rec domain.Record) {
	token := ""
	if s.creds != nil {
		if t, ok := s.creds.AccessToken(ctx, rec.UserID); ok {
			token = t
		}
	}
	if token == "" && !s.pool {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		_, _, _ = s.inflight.Do(strings.ToLower(rec.Username), func() (any, error) {
			rctx, cancel := context.WithTimeout(bg, refreshTimeout)
			defer cancel()
			_, err := s.Reconcile(rctx, domain.Identity{UserID: rec.UserID, Login: rec.Username}, token)
			if err != nil {
				s.log.Warn().Err(err).Str("login", rec.Username).Msg("background refresh failed")
			}
			return nil, err
		})
	}()
}

// upstream keeps meaningful upstream codes and folds the rest into ErrorCodeUpstream
func upstream(err error, login string) error {
	switch perr.CodeOf(err) {
	case perr.ErrorCodeUpstream, perr.ErrorCodeNotFound, perr.ErrorCodeUnauthorized,
		perr.ErrorCodeTooManyRequests, perr.ErrorCodeInvalidArgument:
		return err
	}
	return perr.Wrapf(err, perr.ErrorCodeUpstream, "fetch activity for %s", login)
}
