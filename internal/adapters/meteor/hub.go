package meteor

import (
	"context"
	"sync"

	"gitplanet/internal/platform/logger"
)

const defaultBuffer = 16

// Hub fans meteors out to live subscribers keyed by username
// Publish never blocks, a subscriber whose buffer is full misses the event
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Event]struct{}
	buffer int
	log    *logger.Logger
}

// NewHub constructs a Hub, buffer <= 0 uses the default
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   make(map[string]map[chan Event]struct{}),
		buffer: buffer,
		log:    logger.Named("meteor"),
	}
}

// Subscribe registers a listener for username
// cancel is idempotent and closes the channel
func (h *Hub) Subscribe(username string) (<-chan Event, func()) {
	k := key(username)
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	set, ok := h.subs[k]
	if !ok {
		set = make(map[chan Event]struct{})
		h.subs[k] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.subs[k]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, k)
				}
			}
			close(ch)
		})
	}
}

// Subscribers returns the listener count for username
func (h *Hub) Subscribers(username string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[key(username)])
}

// Publish implements Sink
func (h *Hub) Publish(_ context.Context, evs ...Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ev := range evs {
		for ch := range h.subs[key(ev.Username)] {
			select {
			case ch <- ev:
			default:
				h.log.Debug().Str("username", ev.Username).Str("kind", string(ev.Kind)).Msg("meteor dropped for slow subscriber")
			}
		}
	}
	return nil
}
