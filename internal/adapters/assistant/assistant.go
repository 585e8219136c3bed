// Package assistant is a best effort generative text client backed by an Ollama chat endpoint
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"gitplanet/internal/platform/config"
	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/platform/logger"
)

const defaultTimeout = 15 * time.Second

// Options configures the Client, an empty BaseURL or Model leaves it unconfigured
type Options struct {
	BaseURL string
	Model   string
	Token   string
	Timeout time.Duration
}

// FromConfig reads ASSISTANT_ scoped settings
func FromConfig(cfg config.Conf) Options {
	return Options{
		BaseURL: cfg.MayString("BASE_URL", ""),
		Model:   cfg.MayString("MODEL", ""),
		Token:   cfg.MayString("TOKEN", ""),
		Timeout: cfg.MayDuration("TIMEOUT", defaultTimeout),
	}
}

// Client implements palette.Assistant and naming.Assistant
type Client struct {
	http *http.Client
	opts Options
	log  *logger.Logger
}

// New constructs a Client
func New(o Options) *Client {
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	o.Model = strings.TrimSpace(o.Model)
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  logger.Named("assistant"),
	}
}

// Configured reports whether the endpoint and model are set
func (c *Client) Configured() bool {
	return c != nil && c.opts.BaseURL != "" && c.opts.Model != ""
}

// Model returns the configured model name
func (c *Client) Model() string { return c.opts.Model }

// Generate answers prompt, ok is false when unconfigured or on any failure
func (c *Client) Generate(ctx context.Context, prompt string) (string, bool) {
	if !c.Configured() {
		return "", false
	}
	text, err := c.chat(ctx, prompt)
	if err != nil {
		c.log.Warn().Err(err).Str("model", c.opts.Model).Msg("assistant generate failed")
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Message message `json:"message"`
	Error   string  `json:"error"`
}

func (c *Client) chat(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    c.opts.Model,
		Messages: []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeJSON, "assistant encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "assistant new request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "assistant request")
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUpstream, "assistant read response")
	}
	if resp.StatusCode/100 != 2 {
		return "", perr.Upstreamf("assistant status %d: %s", resp.StatusCode, truncate(string(b), 256))
	}
	var out chatResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUpstream, "assistant decode response")
	}
	if out.Error != "" {
		return "", perr.Upstreamf("assistant error: %s", out.Error)
	}
	return out.Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
