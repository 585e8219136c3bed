package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"gitplanet/internal/modkit/httpkit"
	perr "gitplanet/internal/platform/errors"
	phttp "gitplanet/internal/platform/net/http"
	"gitplanet/internal/services/auth/domain"
)

const liveToken = "6f1c2a9e-3a57-4c2b-9d3e-1b1f4f1f7a10"

type fakeService struct {
	beginErr  error
	code      string
	loggedOut []string
}

func (f *fakeService) Begin() (string, string, error) {
	if f.beginErr != nil {
		return "", "", f.beginErr
	}
	return "https://github.test/authorize?state=s1", "s1", nil
}

func (f *fakeService) Complete(_ context.Context, code string) (domain.Session, error) {
	f.code = code
	if code == "bad" {
		return domain.Session{}, perr.Upstreamf("bad_verification_code")
	}
	return domain.Session{
		Token:       liveToken,
		UserID:      583231,
		Login:       "octocat",
		AccessToken: "gho_secret",
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeService) Resolve(_ context.Context, token string) (domain.Session, error) {
	if token != liveToken {
		return domain.Session{}, perr.Unauthorizedf("invalid session")
	}
	return domain.Session{Token: token, UserID: 583231, Login: "octocat", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeService) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

func (f *fakeService) AccessToken(context.Context, int64) (string, bool) { return "", false }

func (f *fakeService) Purge(context.Context, time.Time) (int64, error) { return 0, nil }

var cookies = Cookies{Session: "sess", State: "st"}

func newRouter(s *fakeService, c Cookies) stdhttp.Handler {
	port := httpkit.NewPortFunc(func(ctx context.Context, token string) (string, string, error) {
		sess, err := s.Resolve(ctx, token)
		if err != nil {
			return "", "", err
		}
		return "583231", sess.Login, nil
	}).WithCookie(c.Session)

	r := phttp.AdaptChi(chi.NewRouter())
	r.Route("/auth", func(ar phttp.Router) { Register(ar, s, port, c) })
	return r.Mux()
}

func setCookies(rec *httptest.ResponseRecorder) map[string]*stdhttp.Cookie {
	out := map[string]*stdhttp.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestLogin_RedirectsWithState(t *testing.T) {
	t.Parallel()
	h := newRouter(&fakeService{}, cookies)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/auth/github/login", nil))
	if rec.Code != stdhttp.StatusFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://github.test/authorize?state=s1" {
		t.Fatalf("location = %q", loc)
	}
	st := setCookies(rec)["st"]
	if st == nil || st.Value != "s1" || !st.HttpOnly {
		t.Fatalf("state cookie = %+v", st)
	}
}

func TestLogin_Unconfigured(t *testing.T) {
	t.Parallel()
	h := newRouter(&fakeService{beginErr: perr.Unavailablef("github sign in is not configured")}, cookies)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/auth/github/login", nil))
	if rec.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func callback(h stdhttp.Handler, query, stateCookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(stdhttp.MethodGet, "/auth/github/callback?"+query, nil)
	if stateCookie != "" {
		req.AddCookie(&stdhttp.Cookie{Name: "st", Value: stateCookie})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCallback(t *testing.T) {
	t.Parallel()

	t.Run("issues session", func(t *testing.T) {
		t.Parallel()
		fs := &fakeService{}
		rec := callback(newRouter(fs, cookies), "code=abc&state=s1", "s1")
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
		}
		if fs.code != "abc" {
			t.Fatalf("code = %q", fs.code)
		}
		if strings.Contains(rec.Body.String(), "gho_secret") {
			t.Fatalf("access token leaked: %s", rec.Body.String())
		}
		var env struct {
			Data domain.Issued `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Data.Token != liveToken || env.Data.Login != "octocat" {
			t.Fatalf("issued = %+v", env.Data)
		}
		cs := setCookies(rec)
		if cs["sess"] == nil || cs["sess"].Value != liveToken {
			t.Fatalf("session cookie = %+v", cs["sess"])
		}
		if cs["st"] == nil || cs["st"].MaxAge >= 0 {
			t.Fatalf("state cookie not cleared: %+v", cs["st"])
		}
	})

	t.Run("redirects when configured", func(t *testing.T) {
		t.Parallel()
		c := cookies
		c.AfterLogin = "/planet"
		rec := callback(newRouter(&fakeService{}, c), "code=abc&state=s1", "s1")
		if rec.Code != stdhttp.StatusFound || rec.Header().Get("Location") != "/planet" {
			t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	cases := map[string]struct {
		query  string
		cookie string
		status int
	}{
		"no cookie":      {query: "code=abc&state=s1", status: stdhttp.StatusUnauthorized},
		"state mismatch": {query: "code=abc&state=s2", cookie: "s1", status: stdhttp.StatusUnauthorized},
		"empty state":    {query: "code=abc", cookie: "s1", status: stdhttp.StatusUnauthorized},
		"bad code":       {query: "code=bad&state=s1", cookie: "s1", status: stdhttp.StatusBadGateway},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fs := &fakeService{}
			rec := callback(newRouter(fs, cookies), tc.query, tc.cookie)
			if rec.Code != tc.status {
				t.Fatalf("status = %d want %d", rec.Code, tc.status)
			}
			if _, ok := setCookies(rec)["sess"]; ok {
				t.Fatalf("session cookie set on failure")
			}
		})
	}
}

func TestMeAndLogout(t *testing.T) {
	t.Parallel()
	fs := &fakeService{}
	h := newRouter(fs, cookies)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/auth/me", nil))
	if rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("anonymous me status = %d", rec.Code)
	}

	req := httptest.NewRequest(stdhttp.MethodGet, "/auth/me", nil)
	req.AddCookie(&stdhttp.Cookie{Name: "sess", Value: liveToken})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != stdhttp.StatusOK || !strings.Contains(rec.Body.String(), `"login":"octocat"`) {
		t.Fatalf("me status = %d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(stdhttp.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+liveToken)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != stdhttp.StatusNoContent {
		t.Fatalf("logout status = %d", rec.Code)
	}
	if len(fs.loggedOut) != 1 || fs.loggedOut[0] != liveToken {
		t.Fatalf("logged out = %v", fs.loggedOut)
	}
	if c := setCookies(rec)["sess"]; c == nil || c.MaxAge >= 0 {
		t.Fatalf("session cookie not cleared: %+v", c)
	}
}
