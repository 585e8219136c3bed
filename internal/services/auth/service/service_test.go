package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"gitplanet/internal/modkit/repokit"
	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/platform/store"
	"gitplanet/internal/services/auth/domain"
	"gitplanet/internal/services/auth/repo"
)

type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (fakeDB) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (fakeDB) QueryRow(context.Context, string, ...any) store.Row            { return nil }
func (f fakeDB) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	return fn(f)
}

type memSessions struct {
	mu        sync.Mutex
	byToken   map[string]domain.Session
	insertErr error
}

func newMemSessions() *memSessions { return &memSessions{byToken: map[string]domain.Session{}} }

func (m *memSessions) Insert(_ context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.byToken[s.Token] = s
	return nil
}

func (m *memSessions) Get(_ context.Context, token string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byToken[token]
	if !ok {
		return domain.Session{}, perr.ErrNotFound
	}
	return s, nil
}

func (m *memSessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byToken, token)
	return nil
}

func (m *memSessions) Latest(_ context.Context, userID int64, now time.Time) (domain.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var live []domain.Session
	for _, s := range m.byToken {
		if s.UserID == userID && s.ExpiresAt.After(now) {
			live = append(live, s)
		}
	}
	if len(live) == 0 {
		return domain.Session{}, false, nil
	}
	sort.Slice(live, func(i, j int) bool { return live[i].ExpiresAt.After(live[j].ExpiresAt) })
	return live[0], true, nil
}

func (m *memSessions) Purge(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, s := range m.byToken {
		if !s.ExpiresAt.After(before) {
			delete(m.byToken, k)
			n++
		}
	}
	return n, nil
}

type fakeOAuth struct {
	configured bool
	token      string
	viewer     domain.Viewer
	err        error
	codes      []string
}

func (f *fakeOAuth) Configured() bool            { return f.configured }
func (f *fakeOAuth) AuthURL(state string) string { return "https://github.test/authorize?state=" + state }

func (f *fakeOAuth) ExchangeCode(_ context.Context, code string) (string, error) {
	f.codes = append(f.codes, code)
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

func (f *fakeOAuth) Viewer(context.Context, string) (domain.Viewer, error) { return f.viewer, nil }

type harness struct {
	svc   *Svc
	repo  *memSessions
	oauth *fakeOAuth
	now   time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		repo:  newMemSessions(),
		oauth: &fakeOAuth{configured: true, token: "gho_user", viewer: domain.Viewer{ID: 583231, Login: "octocat"}},
		now:   time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	binder := repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return h.repo })
	h.svc = New(fakeDB{}, binder, Options{
		OAuth: h.oauth,
		TTL:   24 * time.Hour,
		Now:   func() time.Time { return h.now },
	})
	return h
}

func TestBegin(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	u, state, err := h.svc.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if state == "" || u != "https://github.test/authorize?state="+state {
		t.Fatalf("url=%q state=%q", u, state)
	}
	_, again, _ := h.svc.Begin()
	if again == state {
		t.Fatalf("state reused")
	}

	h.oauth.configured = false
	if _, _, err := h.svc.Begin(); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("unconfigured err = %v", err)
	}
}

func TestComplete_IssuesSessionAndRunsHook(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	var hooked []string
	h.svc.SetLoginHook(func(_ context.Context, id int64, login, token string) error {
		hooked = append(hooked, login, token)
		if id != 583231 {
			t.Errorf("hook id = %d", id)
		}
		return errors.New("github down")
	})

	sess, err := h.svc.Complete(context.Background(), " abc ")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(h.oauth.codes) != 1 || h.oauth.codes[0] != "abc" {
		t.Fatalf("codes = %v", h.oauth.codes)
	}
	if sess.UserID != 583231 || sess.Login != "octocat" || sess.AccessToken != "gho_user" {
		t.Fatalf("session = %+v", sess)
	}
	if !sess.ExpiresAt.Equal(h.now.Add(24 * time.Hour)) {
		t.Fatalf("expires = %v", sess.ExpiresAt)
	}
	if len(hooked) != 2 || hooked[0] != "octocat" || hooked[1] != "gho_user" {
		t.Fatalf("hook = %v", hooked)
	}

	got, err := h.svc.Resolve(context.Background(), sess.Token)
	if err != nil || got.Login != "octocat" {
		t.Fatalf("Resolve = %+v, %v", got, err)
	}
}

func TestComplete_Failures(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		code  string
		setup func(h *harness)
		want  perr.ErrorCode
	}{
		"empty code":    {code: " ", want: perr.ErrorCodeInvalidArgument},
		"unconfigured":  {code: "x", setup: func(h *harness) { h.oauth.configured = false }, want: perr.ErrorCodeUnavailable},
		"bad exchange":  {code: "x", setup: func(h *harness) { h.oauth.err = perr.Upstreamf("bad_verification_code") }, want: perr.ErrorCodeUpstream},
		"empty viewer":  {code: "x", setup: func(h *harness) { h.oauth.viewer = domain.Viewer{} }, want: perr.ErrorCodeUpstream},
		"insert failed": {code: "x", setup: func(h *harness) { h.repo.insertErr = perr.Newf(perr.ErrorCodeDB, "down") }, want: perr.ErrorCodeDB},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)
			if tc.setup != nil {
				tc.setup(h)
			}
			_, err := h.svc.Complete(context.Background(), tc.code)
			if !perr.IsCode(err, tc.want) {
				t.Fatalf("err = %v, want code %v", err, tc.want)
			}
			if len(h.repo.byToken) != 0 {
				t.Fatalf("session stored on failure")
			}
		})
	}
}

func TestResolve_RejectsBadAndExpired(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.svc.Resolve(ctx, "not-a-uuid"); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("garbage err = %v", err)
	}
	if _, err := h.svc.Resolve(ctx, "6f1c2a9e-3a57-4c2b-9d3e-1b1f4f1f7a10"); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("unknown err = %v", err)
	}

	sess, err := h.svc.Complete(ctx, "abc")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	h.now = h.now.Add(25 * time.Hour)
	if _, err := h.svc.Resolve(ctx, sess.Token); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("expired err = %v", err)
	}
	if _, ok := h.svc.AccessToken(ctx, 583231); ok {
		t.Fatalf("expired session still yields a token")
	}

	n, err := h.svc.Purge(ctx, h.now)
	if err != nil || n != 1 {
		t.Fatalf("Purge = %d, %v", n, err)
	}
}

func TestLogoutAndAccessToken(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	if _, ok := h.svc.AccessToken(ctx, 583231); ok {
		t.Fatalf("token before sign in")
	}
	first, _ := h.svc.Complete(ctx, "one")

	h.now = h.now.Add(time.Hour)
	h.oauth.token = "gho_newer"
	second, _ := h.svc.Complete(ctx, "two")

	if tok, ok := h.svc.AccessToken(ctx, 583231); !ok || tok != "gho_newer" {
		t.Fatalf("AccessToken = %q %v", tok, ok)
	}

	if err := h.svc.Logout(ctx, second.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := h.svc.Resolve(ctx, second.Token); err == nil {
		t.Fatalf("session alive after logout")
	}
	if tok, _ := h.svc.AccessToken(ctx, 583231); tok != "gho_user" {
		t.Fatalf("fallback token = %q", tok)
	}
	if _, err := h.svc.Resolve(ctx, first.Token); err != nil {
		t.Fatalf("other session affected: %v", err)
	}
	if err := h.svc.Logout(ctx, "garbage"); err != nil {
		t.Fatalf("Logout garbage: %v", err)
	}
}
