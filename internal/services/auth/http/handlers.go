// Package http exposes the GitHub sign in flow
package http

import (
	"crypto/subtle"
	stdhttp "net/http"
	"strings"
	"time"

	"gitplanet/internal/modkit/httpkit"
	perr "gitplanet/internal/platform/errors"
	phttp "gitplanet/internal/platform/net/http"
	"gitplanet/internal/platform/net/middleware"
	"gitplanet/internal/services/auth/domain"
	svc "gitplanet/internal/services/auth/service"
)

const stateTTL = 10 * time.Minute

// Cookies names and scopes the browser cookies
type Cookies struct {
	Session    string
	State      string
	Secure     bool
	AfterLogin string
}

// Register mounts the auth routes, the caller bounds request time
func Register(r httpkit.Router, s svc.Service, auth middleware.AuthPort, c Cookies) {
	h := &handlers{svc: s, c: c}

	r.Get("/github/login", h.login)
	r.Get("/github/callback", phttp.Handle(h.callback))
	r.Post("/logout", phttp.Handle(h.logout))
	httpkit.Protected(r, auth, func(pr httpkit.Router) {
		httpkit.Get(pr, "/me", h.me)
	})
}

type handlers struct {
	svc svc.Service
	c   Cookies
}

func (h *handlers) cookie(name, value string, maxAge int) *stdhttp.Cookie {
	return &stdhttp.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.c.Secure,
		SameSite: stdhttp.SameSiteLaxMode,
	}
}

func withCookies(resp phttp.Response, cs ...*stdhttp.Cookie) phttp.Response {
	if resp.Header == nil {
		resp.Header = stdhttp.Header{}
	}
	for _, c := range cs {
		resp.Header.Add("Set-Cookie", c.String())
	}
	return resp
}

// swagger:route GET /auth/github/login Auth login
// @Summary Start GitHub sign in
// @Description Redirects to GitHub with a state value that is also set as a cookie
// @Tags auth
// @Success 302 "redirect to github"
// @Failure 503 {object} httpkit.Envelope "sign in not configured"
// @Router /auth/github/login [get]
func (h *handlers) login(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	u, state, err := h.svc.Begin()
	if err != nil {
		phttp.WriteError(w, r, err)
		return
	}
	stdhttp.SetCookie(w, h.cookie(h.c.State, state, int(stateTTL.Seconds())))
	stdhttp.Redirect(w, r, u, stdhttp.StatusFound)
}

// swagger:route GET /auth/github/callback Auth callback
// @Summary Finish GitHub sign in
// @Description Checks state, exchanges the code, issues a session and reconciles the user's planet
// @Tags auth
// @Produce json
// @Param code query string true "OAuth code"
// @Param state query string true "OAuth state"
// @Success 200 {object} domain.Issued "session issued"
// @Success 302 "redirect after sign in"
// @Failure 401 {object} httpkit.Envelope "state mismatch"
// @Failure 502 {object} httpkit.Envelope "github exchange failed"
// @Router /auth/github/callback [get]
func (h *handlers) callback(r *stdhttp.Request) phttp.Response {
	q := r.URL.Query()
	state := strings.TrimSpace(q.Get("state"))
	c, err := r.Cookie(h.c.State)
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(c.Value), []byte(state)) != 1 {
		return phttp.Error(perr.Unauthorizedf("oauth state mismatch"))
	}
	drop := h.cookie(h.c.State, "", -1)

	sess, err := h.svc.Complete(r.Context(), q.Get("code"))
	if err != nil {
		return withCookies(phttp.Error(err), drop)
	}
	sc := h.cookie(h.c.Session, sess.Token, int(time.Until(sess.ExpiresAt).Seconds()))
	sc.Expires = sess.ExpiresAt

	if h.c.AfterLogin != "" {
		resp := withCookies(phttp.Response{Status: stdhttp.StatusFound}, drop, sc)
		resp.Header.Set("Location", h.c.AfterLogin)
		return resp
	}
	return withCookies(phttp.OK(domain.IssuedOf(sess)), drop, sc)
}

// swagger:route POST /auth/logout Auth logout
// @Summary End the current session
// @Tags auth
// @Success 204 "signed out"
// @Router /auth/logout [post]
func (h *handlers) logout(r *stdhttp.Request) phttp.Response {
	token, err := httpkit.Bearer(r)
	if err != nil {
		if c, cerr := r.Cookie(h.c.Session); cerr == nil {
			token = c.Value
		}
	}
	if token != "" {
		if err := h.svc.Logout(r.Context(), token); err != nil {
			return phttp.Error(err)
		}
	}
	return withCookies(phttp.NoContent(), h.cookie(h.c.Session, "", -1))
}

// swagger:route GET /auth/me Auth me
// @Summary The signed in user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.Me "ok"
// @Failure 401 {object} httpkit.Envelope "unauthorized"
// @Router /auth/me [get]
func (h *handlers) me(r *stdhttp.Request) (any, error) {
	token, err := httpkit.Bearer(r)
	if err != nil {
		c, cerr := r.Cookie(h.c.Session)
		if cerr != nil {
			return nil, err
		}
		token = c.Value
	}
	sess, err := h.svc.Resolve(r.Context(), token)
	if err != nil {
		return nil, err
	}
	return domain.Me{UserID: sess.UserID, Login: sess.Login, ExpiresAt: sess.ExpiresAt}, nil
}
