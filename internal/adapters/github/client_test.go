package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	perr "gitplanet/internal/platform/errors"
)

func newTestClient(t *testing.T, h http.HandlerFunc, o Options) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	o.BaseURL = srv.URL
	o.GraphQLURL = srv.URL + "/graphql"
	o.OAuthURL = srv.URL + "/login/oauth"
	c := NewClient(o)
	c.sleep = func(time.Duration) {}
	return c
}

const activityJSON = `{"data":{"user":{
  "databaseId":583231,
  "login":"octocat",
  "createdAt":"2020-01-02T03:04:05Z",
  "starredRepositories":{"totalCount":4},
  "repositories":{"nodes":[
    {"nameWithOwner":"octocat/a","stargazerCount":3,"languages":{"edges":[
      {"size":700,"node":{"name":"Go"}},{"size":100,"node":{"name":"Rust"}}]}}
  ]},
  "repositoriesContributedTo":{"nodes":[
    {"nameWithOwner":"golang/go","stargazerCount":100000,"languages":{"edges":[
      {"size":200,"node":{"name":"Rust"}}]}}
  ]},
  "contributionsCollection":{"contributionCalendar":{
    "totalContributions":120,
    "weeks":[{"contributionDays":[
      {"date":"2024-05-01","contributionCount":3},
      {"date":"2024-05-02","contributionCount":7}]}]
  }}
}}}`

func TestActivity_MapsSnapshot(t *testing.T) {
	t.Parallel()

	var gotAuth, gotLogin string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graphql" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Variables map[string]any `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotLogin, _ = body.Variables["login"].(string)
		_, _ = io.WriteString(w, activityJSON)
	}, Options{})

	s, err := c.Activity(context.Background(), "octocat", "gho_user")
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if gotAuth != "Bearer gho_user" || gotLogin != "octocat" {
		t.Fatalf("request auth=%q login=%q", gotAuth, gotLogin)
	}
	if len(s.Owned) != 1 || len(s.Contributed) != 1 {
		t.Fatalf("repos owned=%d contributed=%d", len(s.Owned), len(s.Contributed))
	}
	if s.Owned[0].Stargazers != 3 || s.Owned[0].Languages[0].Name != "Go" || s.Owned[0].Languages[0].Size != 700 {
		t.Fatalf("owned repo mismatch: %+v", s.Owned[0])
	}
	if s.TotalContributions != 120 || s.StarredCount != 4 || len(s.Calendar) != 2 {
		t.Fatalf("snapshot mismatch: %+v", s)
	}
	if s.Calendar[1].Count != 7 || s.Calendar[1].Date.Day() != 2 {
		t.Fatalf("calendar mismatch: %+v", s.Calendar)
	}
	if s.UserID != 583231 || s.Login != "octocat" {
		t.Fatalf("identity: %d %q", s.UserID, s.Login)
	}
	if s.AccountCreatedAt.Year() != 2020 {
		t.Fatalf("created at: %v", s.AccountCreatedAt)
	}
}

func TestActivity_UsesServicePoolWithoutUserToken(t *testing.T) {
	t.Parallel()

	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, activityJSON)
	}, Options{TokensCSV: " ghs_a, ghs_b ,"})

	if !c.HasServiceTokens() {
		t.Fatal("pool should be configured")
	}
	for range 2 {
		if _, err := c.Activity(context.Background(), "octocat", ""); err != nil {
			t.Fatalf("Activity: %v", err)
		}
	}
	if len(seen) != 2 || seen[0] == seen[1] {
		t.Fatalf("tokens should rotate: %v", seen)
	}
}

func TestActivity_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		code   perr.ErrorCode
	}{
		{"graphql errors", 200, `{"data":{"user":null},"errors":[{"type":"FORBIDDEN","message":"nope"}]}`, perr.ErrorCodeUpstream},
		{"unknown user", 200, `{"data":{"user":null},"errors":[{"type":"NOT_FOUND","message":"no user"}]}`, perr.ErrorCodeNotFound},
		{"null user", 200, `{"data":{"user":null}}`, perr.ErrorCodeUpstream},
		{"garbage", 200, `<html>`, perr.ErrorCodeUpstream},
		{"bad token", 401, `{"message":"Bad credentials"}`, perr.ErrorCodeUnauthorized},
		{"server error", 500, `boom`, perr.ErrorCodeUpstream},
		{"exhausted 502", 502, ``, perr.ErrorCodeUpstream},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}, Options{MaxRetries: 1})

			_, err := c.Activity(context.Background(), "octocat", "gho_x")
			if err == nil {
				t.Fatal("want error")
			}
			if got := perr.CodeOf(err); got != tc.code {
				t.Fatalf("code = %v want %v (%v)", got, tc.code, err)
			}
		})
	}
}

func TestActivity_EmptyLogin(t *testing.T) {
	t.Parallel()

	c := NewClient(Options{})
	if _, err := c.Activity(context.Background(), "  ", ""); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, activityJSON)
	}, Options{MaxRetries: 3})

	if _, err := c.Activity(context.Background(), "octocat", ""); err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("want 3 calls, got %d", calls.Load())
	}
}

func TestDo_RateLimitHonorsRetryAfter(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var slept []time.Duration
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = io.WriteString(w, activityJSON)
	}, Options{})
	c.sleep = func(d time.Duration) { slept = append(slept, d) }

	if _, err := c.Activity(context.Background(), "octocat", ""); err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Fatalf("want one 2s sleep, got %v", slept)
	}
}

func TestDo_PlainForbiddenIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("X-RateLimit-Remaining", "4000")
		w.WriteHeader(http.StatusForbidden)
	}, Options{})

	_, err := c.Viewer(context.Background(), "gho_x")
	if !perr.IsCode(err, perr.ErrorCodeForbidden) || calls.Load() != 1 {
		t.Fatalf("want single forbidden call, got %v after %d", err, calls.Load())
	}
}

func TestBackoff_Caps(t *testing.T) {
	t.Parallel()

	c := NewClient(Options{RetryBase: time.Second})
	if c.backoff(0) != time.Second || c.backoff(2) != 4*time.Second {
		t.Fatalf("backoff should double: %v %v", c.backoff(0), c.backoff(2))
	}
	if c.backoff(10) != maxBackoff {
		t.Fatalf("backoff should cap, got %v", c.backoff(10))
	}
}

func TestRate(t *testing.T) {
	t.Parallel()
	now := time.Unix(1_700_000_000, 0)

	cases := []struct {
		name    string
		status  int
		headers map[string]string
		limited bool
		wait    time.Duration
	}{
		{"secondary 429", 429, nil, true, 0},
		{"quota spent", 403, map[string]string{"X-RateLimit-Remaining": "0", "X-RateLimit-Reset": "1700000042"}, true, 42 * time.Second},
		{"retry after", 403, map[string]string{"Retry-After": "5", "X-RateLimit-Remaining": "0"}, true, 5 * time.Second},
		{"plain forbidden", 403, map[string]string{"X-RateLimit-Remaining": "10"}, false, 0},
		{"server error", 500, map[string]string{"X-RateLimit-Remaining": "0"}, false, 0},
	}
	for _, tc := range cases {
		h := http.Header{}
		for k, v := range tc.headers {
			h.Set(k, v)
		}
		rl := readRate(h)
		if got := rl.limited(tc.status); got != tc.limited {
			t.Fatalf("%s: limited = %v", tc.name, got)
		}
		if tc.limited {
			if got := rl.wait(now); got != tc.wait {
				t.Fatalf("%s: wait = %v want %v", tc.name, got, tc.wait)
			}
		}
	}
	if rl := readRate(http.Header{}); rl.remaining != -1 {
		t.Fatalf("missing header remaining = %d", rl.remaining)
	}
}

func TestOAuth_ExchangeAndViewer(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login/oauth/access_token":
			if r.Header.Get("Authorization") != "" {
				t.Errorf("token exchange must be anonymous")
			}
			_ = r.ParseForm()
			if r.PostForm.Get("code") != "abc" || r.PostForm.Get("client_secret") != "shh" {
				t.Errorf("form: %v", r.PostForm)
			}
			_, _ = io.WriteString(w, `{"access_token":"gho_new","token_type":"bearer"}`)
		case "/user":
			if r.Header.Get("Authorization") != "Bearer gho_new" {
				t.Errorf("viewer auth: %q", r.Header.Get("Authorization"))
			}
			_, _ = io.WriteString(w, `{"id":583231,"login":"octocat","name":"The Octocat"}`)
		default:
			http.NotFound(w, r)
		}
	}, Options{ClientID: "cid", ClientSecret: "shh", TokensCSV: "ghs_pool"})

	tok, err := c.ExchangeCode(context.Background(), "abc")
	if err != nil || tok != "gho_new" {
		t.Fatalf("ExchangeCode = %q, %v", tok, err)
	}
	v, err := c.Viewer(context.Background(), tok)
	if err != nil || v.ID != 583231 || v.Login != "octocat" {
		t.Fatalf("Viewer = %+v, %v", v, err)
	}
}

func TestOAuth_ExchangeErrorPayload(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"error":"bad_verification_code","error_description":"expired"}`)
	}, Options{ClientID: "cid", ClientSecret: "shh"})

	_, err := c.ExchangeCode(context.Background(), "old")
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("want unauthorized with description, got %v", err)
	}
}

func TestOAuth_Unconfigured(t *testing.T) {
	t.Parallel()

	c := NewClient(Options{})
	if c.Configured() {
		t.Fatal("no client id means unconfigured")
	}
	if _, err := c.ExchangeCode(context.Background(), "x"); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want unavailable, got %v", err)
	}
}

func TestAuthURL(t *testing.T) {
	t.Parallel()

	c := NewClient(Options{ClientID: "cid", RedirectURL: "http://localhost:4000/api/v1/auth/github/callback"})
	u := c.AuthURL("st8")
	for _, want := range []string{"https://github.com/login/oauth/authorize?", "client_id=cid", "state=st8", "scope=read%3Auser", "redirect_uri="} {
		if !strings.Contains(u, want) {
			t.Fatalf("AuthURL %q missing %q", u, want)
		}
	}
}
