package http

import (
	"fmt"
	stdhttp "net/http"
	"strings"

	perr "gitplanet/internal/platform/errors"
)

// EventStream writes Server-Sent Events to a flushing ResponseWriter
type EventStream struct {
	w stdhttp.ResponseWriter
	f stdhttp.Flusher
}

// NewEventStream sets the event-stream headers and flushes them
func NewEventStream(w stdhttp.ResponseWriter) (*EventStream, error) {
	f, ok := w.(stdhttp.Flusher)
	if !ok {
		return nil, perr.Internalf("streaming unsupported")
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(stdhttp.StatusOK)
	f.Flush()
	return &EventStream{w: w, f: f}, nil
}

// Send writes one event, multi line data is split into data fields
func (s *EventStream) Send(id, event string, data []byte) error {
	var b strings.Builder
	if id != "" {
		fmt.Fprintf(&b, "id: %s\n", id)
	}
	if event != "" {
		fmt.Fprintf(&b, "event: %s\n", event)
	}
	for _, line := range strings.Split(string(data), "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	if _, err := s.w.Write([]byte(b.String())); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// KeepAlive writes a comment line so proxies keep the connection open
func (s *EventStream) KeepAlive() error {
	if _, err := s.w.Write([]byte(":\n\n")); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}
