// Package meteor carries planet change events to live subscribers and the event log
package meteor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind labels a meteor
type Kind string

const (
	// KindPlanet is emitted on every successful reconcile
	KindPlanet Kind = "planet"
	// KindAchievement is emitted once per newly unlocked achievement
	KindAchievement Kind = "achievement"
	// KindCommits is emitted when the total commit count grew
	KindCommits Kind = "commits"
)

// Event is one meteor
type Event struct {
	ID       uuid.UUID      `json:"id"`
	Kind     Kind           `json:"kind"`
	Username string         `json:"username"`
	Payload  map[string]any `json:"payload,omitempty"`
	At       time.Time      `json:"at"`
}

// New stamps an event with a fresh id
func New(kind Kind, username string, payload map[string]any, at time.Time) Event {
	return Event{ID: uuid.New(), Kind: kind, Username: username, Payload: payload, At: at.UTC()}
}

// Sink receives meteors
type Sink interface {
	Publish(ctx context.Context, evs ...Event) error
}

// Nop drops everything
type Nop struct{}

// Publish implements Sink
func (Nop) Publish(context.Context, ...Event) error { return nil }

// Fanout publishes to every sink and joins their errors
type Fanout []Sink

// Publish implements Sink
func (f Fanout) Publish(ctx context.Context, evs ...Event) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, evs...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func key(username string) string { return strings.ToLower(strings.TrimSpace(username)) }
