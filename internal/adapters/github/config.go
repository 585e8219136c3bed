package github

import "gitplanet/internal/platform/config"

// FromConfig reads GITHUB_ scoped client settings
func FromConfig(cfg config.Conf) Options {
	return Options{
		BaseURL:      cfg.MayString("BASE_URL", ""),
		GraphQLURL:   cfg.MayString("GRAPHQL_URL", ""),
		OAuthURL:     cfg.MayString("OAUTH_URL", ""),
		UserAgent:    cfg.MayString("USER_AGENT", defaultUA),
		ClientID:     cfg.MayString("CLIENT_ID", ""),
		ClientSecret: cfg.MayString("CLIENT_SECRET", ""),
		RedirectURL:  cfg.MayString("REDIRECT_URL", ""),
		TokensCSV:    cfg.MayString("TOKENS", ""),
		Timeout:      cfg.MayDuration("TIMEOUT", defaultTimeout),
		MaxRetries:   cfg.MayInt("MAX_RETRIES", defaultMaxRetry),
		RetryBase:    cfg.MayDuration("RETRY_BASE", defaultRetryBase),
	}
}
