package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	perr "gitplanet/internal/platform/errors"
)

// oauthScope is enough to read the public profile and contribution data
const oauthScope = "read:user"

// Viewer is the signed in GitHub account
type Viewer struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Configured reports whether the OAuth app credentials are present
func (c *Client) Configured() bool {
	return c.opts.ClientID != "" && c.opts.ClientSecret != ""
}

// AuthURL returns the consent screen URL carrying state
func (c *Client) AuthURL(state string) string {
	q := url.Values{
		"client_id": {c.opts.ClientID},
		"scope":     {oauthScope},
		"state":     {state},
	}
	if c.opts.RedirectURL != "" {
		q.Set("redirect_uri", c.opts.RedirectURL)
	}
	return c.opts.OAuthURL + "/authorize?" + q.Encode()
}

// ExchangeCode trades an authorization code for a user access token
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	if !c.Configured() {
		return "", perr.Unavailablef("github oauth is not configured")
	}
	form := url.Values{
		"client_id":     {c.opts.ClientID},
		"client_secret": {c.opts.ClientSecret},
		"code":          {code},
	}
	if c.opts.RedirectURL != "" {
		form.Set("redirect_uri", c.opts.RedirectURL)
	}
	resp, err := c.do(ctx, request{
		method:    http.MethodPost,
		url:       c.opts.OAuthURL + "/access_token",
		body:      []byte(form.Encode()),
		accept:    "application/json",
		form:      true,
		anonymous: true,
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUpstream, "github read token response")
	}
	var tr struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Error       string `json:"error"`
		ErrorDesc   string `json:"error_description"`
	}
	if err := json.Unmarshal(b, &tr); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUpstream, "github decode token response")
	}
	if tr.Error != "" {
		return "", perr.Unauthorizedf("github oauth %s: %s", tr.Error, tr.ErrorDesc)
	}
	if strings.TrimSpace(tr.AccessToken) == "" {
		return "", perr.Upstreamf("github oauth returned an empty token")
	}
	return tr.AccessToken, nil
}

// Viewer returns the account that owns token
func (c *Client) Viewer(ctx context.Context, token string) (Viewer, error) {
	if token == "" {
		return Viewer{}, perr.Unauthorizedf("github token is required")
	}
	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		url:    c.opts.BaseURL + "/user",
		token:  token,
		accept: "application/vnd.github+json",
	})
	if err != nil {
		return Viewer{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	var v Viewer
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&v); err != nil {
		return Viewer{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "github decode viewer")
	}
	if v.ID == 0 || v.Login == "" {
		return Viewer{}, perr.Upstreamf("github returned an empty viewer")
	}
	return v, nil
}
