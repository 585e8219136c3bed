package github

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	perr "gitplanet/internal/platform/errors"
)

// GHStatusError carries a non 2xx GitHub response
type GHStatusError struct {
	Status int
	Body   string
}

func (e *GHStatusError) Error() string {
	msg := fmt.Sprintf("github status %d", e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// HTTPStatus returns the upstream status code
func (e *GHStatusError) HTTPStatus() int { return e.Status }

var statusCodes = map[int]struct {
	code perr.ErrorCode
	msg  string
}{
	http.StatusUnauthorized: {perr.ErrorCodeUnauthorized, "github rejected credentials"},
	http.StatusForbidden:    {perr.ErrorCodeForbidden, "github denied access"},
	http.StatusNotFound:     {perr.ErrorCodeNotFound, "github resource not found"},
}

// statusError consumes a terminal response, the body is kept for logs only
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	_ = resp.Body.Close()
	gse := &GHStatusError{Status: resp.StatusCode, Body: string(body)}
	if m, ok := statusCodes[resp.StatusCode]; ok {
		return perr.Wrap(gse, m.code, m.msg)
	}
	return perr.Wrapf(gse, perr.ErrorCodeUpstream, "github unexpected status %d", resp.StatusCode)
}

// rate is what GitHub said about our quota, remaining is -1 when absent
type rate struct {
	remaining  int
	reset      time.Time
	retryAfter time.Duration
}

func readRate(h http.Header) rate {
	num := func(k string) (int, bool) {
		n, err := strconv.Atoi(h.Get(k))
		return n, err == nil
	}
	rl := rate{remaining: -1}
	if n, ok := num("X-RateLimit-Remaining"); ok {
		rl.remaining = n
	}
	if n, ok := num("X-RateLimit-Reset"); ok && n > 0 {
		rl.reset = time.Unix(int64(n), 0).UTC()
	}
	if n, ok := num("Retry-After"); ok && n > 0 {
		rl.retryAfter = time.Duration(n) * time.Second
	}
	return rl
}

// limited separates a primary or secondary limit from a plain 403
func (rl rate) limited(status int) bool {
	switch status {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return rl.remaining == 0 || rl.retryAfter > 0
	}
	return false
}

// wait is zero when the headers give no hint
func (rl rate) wait(now time.Time) time.Duration {
	switch {
	case rl.retryAfter > 0:
		return rl.retryAfter
	case rl.remaining == 0 && rl.reset.After(now):
		return rl.reset.Sub(now)
	}
	return 0
}

func drain(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	_ = rc.Close()
}
