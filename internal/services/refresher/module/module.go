// Package module wires the staleness refresher, it has no routes
package module

import (
	"context"

	"gitplanet/internal/modkit"

	authmod "gitplanet/internal/services/auth/module"
	pdomain "gitplanet/internal/services/planet/domain"
	planetmod "gitplanet/internal/services/planet/module"
	rdom "gitplanet/internal/services/refresher/domain"
	rrepo "gitplanet/internal/services/refresher/repo"
	rsvc "gitplanet/internal/services/refresher/service"
)

// Ports exported by the refresher module
type Ports struct {
	Runner rdom.RunnerPort
}

// planetReconciler adapts the planet service to rdom.Reconciler
type planetReconciler struct{ svc pdomain.ServicePort }

func (p planetReconciler) Reconcile(ctx context.Context, userID int64, login, token string) error {
	_, err := p.svc.Reconcile(ctx, pdomain.Identity{UserID: userID, Login: login}, token)
	return err
}

// New wires sessions, planets and the refresher from deps.Cfg
// meteors go to the ClickHouse recorder only, there are no live subscribers in this process
func New(ctx context.Context, deps modkit.Deps, opts Options) modkit.Module {
	sessions := authmod.NewService(deps, authmod.FromConfig(deps.Cfg))
	popts := planetmod.FromConfig(deps.Cfg)
	parts := planetmod.Assemble(ctx, deps, popts, sessions, nil)

	svc := rsvc.New(deps.PG, rrepo.NewPG(), rsvc.Config{
		Every:       opts.Every,
		StaleAfter:  popts.StaleAfter,
		Limit:       opts.Limit,
		Concurrency: opts.Concurrency,
		LeaseTTL:    opts.LeaseTTL,
		PoolTokens:  parts.GitHub.HasServiceTokens(),
	}, planetReconciler{svc: parts.Service})
	svc.Credentials = sessions
	svc.Sessions = sessions

	return modkit.Build(modkit.WithName("refresher")).Module(Ports{Runner: svc}, nil)
}
