package module

import (
	"context"

	"gitplanet/internal/adapters/assistant"
	gh "gitplanet/internal/adapters/github"
	"gitplanet/internal/adapters/meteor"
	"gitplanet/internal/core/naming"
	"gitplanet/internal/core/palette"
	modkit "gitplanet/internal/modkit"
	"gitplanet/internal/modkit/repokit"
	"gitplanet/internal/platform/logger"
	"gitplanet/internal/services/planet/domain"
	prepo "gitplanet/internal/services/planet/repo"
	psvc "gitplanet/internal/services/planet/service"
)

// Parts are the assembled planet collaborators, shared by the API module and the refresher
type Parts struct {
	GitHub   *gh.Client
	Palette  *palette.Resolver
	Recorder *meteor.Recorder
	Service  *psvc.Svc
}

// Assemble builds the planet service from config, sink receives meteors next to the recorder
func Assemble(ctx context.Context, deps modkit.Deps, opts Options, creds domain.CredentialPort, sink meteor.Sink) Parts {
	ghc := gh.NewClient(opts.GitHub)
	ai := assistant.New(opts.Assistant)

	var gen palette.Assistant
	if ai.Configured() {
		gen = ai
	} else {
		logger.Named("planet").Info().Msg("assistant not configured, colors and names stay deterministic")
	}
	colors := palette.New(palette.WithAssistant(gen))

	rec := meteor.NewRecorder(deps.CH)
	if err := rec.EnsureTable(ctx); err != nil {
		logger.Named("meteor").Warn().Err(err).Msg("meteor table unavailable, events are live only")
	}
	sinks := meteor.Fanout{rec}
	if sink != nil {
		sinks = append(sinks, sink)
	}

	db := repokit.WithBeginHooks(deps.PG, repokit.LockTimeout(opts.LockTimeout))
	svc := psvc.New(db, prepo.NewPG(), psvc.Options{
		Source:        ghc,
		Colors:        colors,
		Namer:         naming.New(gen),
		Sink:          sinks,
		Credentials:   creds,
		PoolTokens:    ghc.HasServiceTokens(),
		StaleAfter:    opts.StaleAfter,
		RefreshOnRead: opts.RefreshOnRead,
		Serialize:     opts.Serialize,
	})
	return Parts{GitHub: ghc, Palette: colors, Recorder: rec, Service: svc}
}
