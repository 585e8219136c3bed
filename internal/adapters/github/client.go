// Package github is a resilient GitHub client covering REST, GraphQL and the OAuth web flow
package github

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/platform/logger"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUA        = "gitplanet"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	maxBackoff       = 30 * time.Second
)

// Options configures the Client, zero values mean public GitHub
type Options struct {
	BaseURL    string
	GraphQLURL string
	OAuthURL   string
	UserAgent  string
	Timeout    time.Duration

	// TokensCSV is the service token pool used when no user token is supplied
	TokensCSV string

	ClientID     string
	ClientSecret string
	RedirectURL  string

	// MaxRetries below zero disables retries
	MaxRetries int
	RetryBase  time.Duration
}

func (o Options) normalized() Options {
	def := func(s *string, v string) {
		if *s == "" {
			*s = v
		}
	}
	def(&o.BaseURL, "https://api.github.com")
	def(&o.GraphQLURL, "https://api.github.com/graphql")
	def(&o.OAuthURL, "https://github.com/login/oauth")
	def(&o.UserAgent, defaultUA)
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	o.OAuthURL = strings.TrimRight(o.OAuthURL, "/")

	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	switch {
	case o.MaxRetries < 0:
		o.MaxRetries = 0
	case o.MaxRetries == 0:
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return o
}

// Client talks to GitHub with token rotation, retries and rate limit handling
type Client struct {
	hc     *http.Client
	opts   Options
	tokens []string
	turn   atomic.Uint32
	log    logger.Logger
	now    func() time.Time
	sleep  func(time.Duration)
}

// NewClient creates a Client
func NewClient(o Options) *Client {
	o = o.normalized()
	c := &Client{
		hc:    &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("github"),
		now:   time.Now,
		sleep: time.Sleep,
	}
	for _, t := range strings.Split(o.TokensCSV, ",") {
		if t = strings.TrimSpace(t); t != "" {
			c.tokens = append(c.tokens, t)
		}
	}
	return c
}

// HasServiceTokens reports whether a token pool is configured
func (c *Client) HasServiceTokens() bool { return len(c.tokens) > 0 }

func (c *Client) poolToken() string {
	if len(c.tokens) == 0 {
		return ""
	}
	return c.tokens[int(c.turn.Add(1))%len(c.tokens)]
}

// request is one logical call, its body is replayed on every attempt
type request struct {
	method    string
	url       string
	body      []byte
	token     string // wins over the pool
	accept    string
	form      bool
	anonymous bool // no Authorization header at all
}

func (c *Client) build(ctx context.Context, r request) (*http.Request, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "github new request failed")
	}
	h := req.Header
	h.Set("User-Agent", c.opts.UserAgent)
	h.Set("Accept", r.accept)
	if r.form {
		h.Set("Content-Type", "application/x-www-form-urlencoded")
	} else if r.body != nil {
		h.Set("Content-Type", "application/json")
	}
	if r.anonymous {
		return req, nil
	}
	tok := r.token
	if tok == "" {
		tok = c.poolToken()
	}
	if tok != "" {
		h.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// do runs r until it succeeds, fails terminally or exhausts MaxRetries
func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, wait, err := c.try(ctx, r, attempt)
		if wait == 0 || attempt >= c.opts.MaxRetries {
			return resp, err
		}
		c.log.Warn().Err(err).Dur("retry_in", wait).Int("attempt", attempt).Msg("github call retrying")
		c.sleep(wait)
	}
}

// try makes one round trip, a non zero wait marks err as retryable
func (c *Client) try(ctx context.Context, r request, attempt int) (*http.Response, time.Duration, error) {
	req, err := c.build(ctx, r)
	if err != nil {
		return nil, 0, err
	}

	start := c.now()
	resp, err := c.hc.Do(req)
	if err != nil {
		err = perr.Wrapf(err, perr.ErrorCodeUpstream, "github request failed")
		if ctx.Err() != nil {
			return nil, 0, err
		}
		return nil, c.backoff(attempt), err
	}

	rl := readRate(resp.Header)
	c.log.Debug().
		Str("method", r.method).
		Str("url", r.url).
		Int("status", resp.StatusCode).
		Int("attempt", attempt).
		Dur("latency", c.now().Sub(start)).
		Int("rate_remaining", rl.remaining).
		Time("rate_reset", rl.reset).
		Msg("github http response")

	switch code := resp.StatusCode; {
	case code/100 == 2, code == http.StatusNotModified:
		return resp, 0, nil
	case rl.limited(code):
		drain(resp.Body)
		wait := rl.wait(c.now())
		if wait <= 0 {
			wait = c.backoff(attempt)
		}
		return nil, min(wait, maxBackoff), perr.Newf(perr.ErrorCodeTooManyRequests, "github rate limited")
	case code == http.StatusBadGateway, code == http.StatusServiceUnavailable, code == http.StatusGatewayTimeout:
		drain(resp.Body)
		return nil, c.backoff(attempt), perr.Upstreamf("github transient server error %d", code)
	default:
		return nil, 0, statusError(resp)
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	if d := c.opts.RetryBase << uint(attempt); d > 0 && d < maxBackoff {
		return d
	}
	return maxBackoff
}
