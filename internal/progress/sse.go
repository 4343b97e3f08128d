package progress

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fiscalsim/engine/internal/domain"
	"github.com/fiscalsim/engine/internal/obslog"
)

// sseEvent is the wire envelope from spec.md §6: every event carries a type
// discriminator and a JSON data payload.
type sseEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// sseSubscriber adapts one HTTP response writer into a Subscriber, writing
// "event: %s\ndata: %s\n\n" frames and flushing after every write so the
// client observes each snapshot as it is published, not buffered until the
// handler returns.
type sseSubscriber struct {
	w       http.ResponseWriter
	flusher http.Flusher
	done    chan struct{}
}

func newSSESubscriber(w http.ResponseWriter) (*sseSubscriber, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("progress: response writer does not support flushing")
	}
	return &sseSubscriber{w: w, flusher: flusher, done: make(chan struct{})}, nil
}

// errorPayload is the {message} shape spec.md §6 mandates for an "error"
// event's data field.
type errorPayload struct {
	Message string `json:"message"`
}

func (s *sseSubscriber) Notify(snap domain.Snapshot) {
	switch snap.Status {
	case domain.StatusCompleted:
		s.write("completed", snap)
		close(s.done)
	case domain.StatusFailed:
		s.write("error", errorPayload{Message: snap.Message})
		close(s.done)
	default:
		s.write("progress", snap)
	}
}

// Heartbeat emits a type:"heartbeat" event with no data payload, per
// spec.md §6.
func (s *sseSubscriber) Heartbeat() {
	fmt.Fprint(s.w, "event: heartbeat\ndata: {\"type\":\"heartbeat\"}\n\n")
	s.flusher.Flush()
}

func (s *sseSubscriber) write(eventType string, data any) {
	payload, err := json.Marshal(sseEvent{Type: eventType, Data: data})
	if err != nil {
		obslog.Warnf("progress: marshal snapshot: %v", err)
		return
	}
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", eventType, payload)
	s.flusher.Flush()
}

// ServeHTTP streams b's progress as Server-Sent Events until the client
// disconnects or a terminal event is delivered. Headers must not have been
// written yet when this is called.
func ServeHTTP(w http.ResponseWriter, r *http.Request, b *Broadcaster) error {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sub, err := newSSESubscriber(w)
	if err != nil {
		return err
	}
	unsubscribe := b.Subscribe(sub)
	defer unsubscribe()

	select {
	case <-r.Context().Done():
		return r.Context().Err()
	case <-sub.done:
		return nil
	}
}
