package module

import (
	"context"

	gh "gitplanet/internal/adapters/github"
	"gitplanet/internal/services/auth/domain"
)

// ghOAuth adapts the GitHub client to domain.OAuthPort
type ghOAuth struct{ c *gh.Client }

func (g ghOAuth) Configured() bool            { return g.c.Configured() }
func (g ghOAuth) AuthURL(state string) string { return g.c.AuthURL(state) }

func (g ghOAuth) ExchangeCode(ctx context.Context, code string) (string, error) {
	return g.c.ExchangeCode(ctx, code)
}

func (g ghOAuth) Viewer(ctx context.Context, token string) (domain.Viewer, error) {
	v, err := g.c.Viewer(ctx, token)
	if err != nil {
		return domain.Viewer{}, err
	}
	return domain.Viewer{ID: v.ID, Login: v.Login}, nil
}

// NewOAuth wraps a GitHub client as the auth OAuth port
func NewOAuth(c *gh.Client) domain.OAuthPort { return ghOAuth{c: c} }
