// Package schema applies the DDL of every service at boot
package schema

import (
	"context"

	"gitplanet/internal/adapters/meteor"
	"gitplanet/internal/modkit/repokit"
	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/platform/logger"
	"gitplanet/internal/platform/store"

	arepo "gitplanet/internal/services/auth/repo"
	prepo "gitplanet/internal/services/planet/repo"
	rrepo "gitplanet/internal/services/refresher/repo"
)

type step struct {
	name string
	run  func(context.Context, repokit.Queryer) error
}

var steps = []step{
	{"planets", prepo.Migrate},
	{"sessions", arepo.Migrate},
	{"refresher", rrepo.Migrate},
}

// Apply runs every postgres migration in order, then ensures the clickhouse meteor table
func Apply(ctx context.Context, st *store.Store) error {
	if st == nil || st.PG == nil {
		return perr.Unavailablef("postgres is not configured")
	}
	log := logger.Named("schema")
	for _, s := range steps {
		if err := s.run(ctx, st.PG); err != nil {
			return perr.WithOp(err, "schema."+s.name)
		}
		log.Debug().Str("step", s.name).Msg("applied")
	}
	if st.CH != nil {
		if err := meteor.NewRecorder(st.CH).EnsureTable(ctx); err != nil {
			return perr.WithOp(err, "schema.meteors")
		}
	}
	log.Info().Int("steps", len(steps)).Bool("clickhouse", st.CH != nil).Msg("schema applied")
	return nil
}
