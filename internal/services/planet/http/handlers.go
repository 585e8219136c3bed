// Package http provides http transport for planets
package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"gitplanet/internal/adapters/meteor"
	"gitplanet/internal/modkit/httpkit"
	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/platform/logger"
	phttp "gitplanet/internal/platform/net/http"
	"gitplanet/internal/platform/net/middleware"
	"gitplanet/internal/services/planet/domain"
	svc "gitplanet/internal/services/planet/service"
)

const (
	requestTimeout = 30 * time.Second
	keepAlive      = 25 * time.Second
	replayLimit    = 20
)

// Stream is the live meteor feed
type Stream interface {
	Subscribe(username string) (<-chan meteor.Event, func())
}

// History replays recent meteors to a new subscriber
type History interface {
	Recent(ctx context.Context, username string, limit int) ([]meteor.Event, error)
}

// Deps are the collaborators of the planet routes
type Deps struct {
	Service svc.Service
	Auth    middleware.AuthPort
	Stream  Stream
	History History
}

// Register mounts the router
func Register(r httpkit.Router, d Deps) {
	h := &handlers{svc: d.Service, stream: d.Stream, history: d.History, log: logger.Named("planet")}

	r.Group(func(gr httpkit.Router) {
		gr.Use(httpkit.Timeout(requestTimeout))
		if d.Auth != nil {
			httpkit.Protected(gr, d.Auth, func(pr httpkit.Router) {
				httpkit.Post(pr, "/reconcile", h.reconcile)
				httpkit.PutJSON[domain.TitleInput](pr, "/me/title", h.saveTitle)
			})
		}
		httpkit.Post(gr, "/{username}/visit", h.visit)
		httpkit.Get(gr, "/{username}", h.view)
	})
	if d.Stream != nil {
		r.Get("/{username}/meteors", h.meteors)
	}
}

type handlers struct {
	svc     svc.Service
	stream  Stream
	history History
	log     *logger.Logger
}

func identity(r *stdhttp.Request) (domain.Identity, error) {
	uid, err := httpkit.User(r)
	if err != nil {
		return domain.Identity{}, err
	}
	id, err := strconv.ParseInt(uid, 10, 64)
	if err != nil || id <= 0 {
		return domain.Identity{}, perr.Unauthorizedf("invalid session subject")
	}
	return domain.Identity{UserID: id, Login: httpkit.Login(r)}, nil
}

func username(r *stdhttp.Request) (string, error) {
	return httpkit.Param(r, "username", "required,ghlogin")
}

// swagger:route POST /planets/reconcile Planets reconcile
// @Summary Reconcile the signed in user's planet
// @Description Fetches fresh GitHub activity, merges achievements and titles, and persists the planet
// @Tags planets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.View "ok"
// @Failure 401 {object} httpkit.Envelope "unauthorized"
// @Failure 502 {object} httpkit.Envelope "github data unavailable, try again"
// @Router /planets/reconcile [post]
func (h *handlers) reconcile(r *stdhttp.Request) (any, error) {
	id, err := identity(r)
	if err != nil {
		return nil, err
	}
	return h.svc.ReconcileSelf(r.Context(), id)
}

// swagger:route PUT /planets/me/title Planets saveTitle
// @Summary Save the active title
// @Tags planets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.TitleInput true "Title"
// @Success 200 {object} domain.View "ok"
// @Failure 404 {object} httpkit.Envelope "no planet yet"
// @Failure 422 {object} httpkit.Envelope "title not unlocked"
// @Router /planets/me/title [put]
func (h *handlers) saveTitle(r *stdhttp.Request, in domain.TitleInput) (any, error) {
	id, err := identity(r)
	if err != nil {
		return nil, err
	}
	return h.svc.SaveActiveTitle(r.Context(), id.UserID, in.Active())
}

// swagger:route POST /planets/{username}/visit Planets visit
// @Summary Visit a planet
// @Description Reconciles the planet with the service token pool when it is missing or stale, then counts the visit
// @Tags planets
// @Produce json
// @Param username path string true "GitHub login"
// @Success 200 {object} domain.VisitOutput "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /planets/{username}/visit [post]
func (h *handlers) visit(r *stdhttp.Request) (any, error) {
	u, err := username(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Visit(r.Context(), u)
}

// swagger:route GET /planets/{username} Planets view
// @Summary Public planet view
// @Tags planets
// @Produce json
// @Param username path string true "GitHub login"
// @Success 200 {object} domain.View "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /planets/{username} [get]
func (h *handlers) view(r *stdhttp.Request) (any, error) {
	u, err := username(r)
	if err != nil {
		return nil, err
	}
	return h.svc.PublicView(r.Context(), u)
}

// swagger:route GET /planets/{username}/meteors Planets meteors
// @Summary Live meteor stream
// @Description Server-Sent Events, one event per meteor, recent meteors are replayed first
// @Tags planets
// @Produce text/event-stream
// @Param username path string true "GitHub login"
// @Success 200 {object} meteor.Event "event stream"
// @Router /planets/{username}/meteors [get]
func (h *handlers) meteors(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	u, err := username(r)
	if err != nil {
		phttp.WriteError(w, r, err)
		return
	}
	events, cancel := h.stream.Subscribe(u)
	defer cancel()

	es, err := phttp.NewEventStream(w)
	if err != nil {
		phttp.WriteError(w, r, err)
		return
	}

	ctx := r.Context()
	// an event published between Subscribe and Recent shows up in both
	replayed := map[uuid.UUID]struct{}{}
	if h.history != nil {
		recent, err := h.history.Recent(ctx, u, replayLimit)
		if err != nil {
			h.log.Warn().Err(err).Str("login", u).Msg("meteor replay failed")
		}
		for i := len(recent) - 1; i >= 0; i-- {
			if err := send(es, recent[i]); err != nil {
				return
			}
			replayed[recent[i].ID] = struct{}{}
		}
	}

	tick := time.NewTicker(keepAlive)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if _, dup := replayed[ev.ID]; dup {
				delete(replayed, ev.ID)
				continue
			}
			if err := send(es, ev); err != nil {
				return
			}
		case <-tick.C:
			if err := es.KeepAlive(); err != nil {
				return
			}
		}
	}
}

func send(es *phttp.EventStream, ev meteor.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return es.Send(ev.ID.String(), string(ev.Kind), b)
}
