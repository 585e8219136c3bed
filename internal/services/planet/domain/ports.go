package domain

import (
	"context"

	"gitplanet/internal/core/metrics"
	"gitplanet/internal/core/titles"
)

// ServicePort is the planet service surface used by transports and other modules
type ServicePort interface {
	Reconcile(ctx context.Context, id Identity, token string) (View, error)
	ReconcileSelf(ctx context.Context, id Identity) (View, error)
	PublicView(ctx context.Context, username string) (View, error)
	Visit(ctx context.Context, username string) (VisitOutput, error)
	SaveActiveTitle(ctx context.Context, userID int64, title titles.Active) (View, error)
}

// ActivitySource fetches the raw activity of a login
// an empty token means the service token pool
type ActivitySource interface {
	Activity(ctx context.Context, login, token string) (metrics.Snapshot, error)
}

// CredentialPort returns a stored user token for background refreshes
type CredentialPort interface {
	AccessToken(ctx context.Context, userID int64) (string, bool)
}
