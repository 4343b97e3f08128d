// Package progress implements the ProgressBroadcaster, per spec.md §4.7:
// publish per-month progress snapshots to zero or more live subscribers
// while a run proceeds, then deliver a terminal event. Grounded in
// internal/mcp/server.go's Session{ID, Messages chan []byte} / sync.Map
// session table, adapted from an MCP message bus to a single-slot,
// coalescing snapshot broadcaster: a slow subscriber observes fewer
// intermediate snapshots but always observes the terminal one (spec.md
// §5/§9), matching the "never back-pressure the producer" requirement.
package progress

import (
	"sync"
	"time"

	"github.com/fiscalsim/engine/internal/domain"
)

// HeartbeatInterval is the recommended wall-clock interval from spec.md
// §4.7 at which a subscriber with no progress change still receives a
// heartbeat event.
const HeartbeatInterval = 30 * time.Second

// Subscriber receives Snapshot and heartbeat events for one simulation.
// Implementations must not block the broadcaster; Notify/Heartbeat are
// called under no lock but must return quickly (e.g. enqueue to a buffered
// channel) since a slow subscriber must never back-pressure the run.
type Subscriber interface {
	Notify(domain.Snapshot)
	Heartbeat()
}

// Broadcaster holds the latest snapshot and subscriber set for one
// in-flight simulation. The zero value is not usable; use New.
type Broadcaster struct {
	simulationID string

	mu        sync.Mutex
	latest    domain.Snapshot
	hasLatest bool
	subs      map[int]Subscriber
	nextSubID int

	stop chan struct{}
}

// New creates a Broadcaster for one simulation and starts its heartbeat
// loop at the recommended interval. Call Close when the run finishes to
// stop the loop.
func New(simulationID string) *Broadcaster {
	return NewWithHeartbeat(simulationID, HeartbeatInterval)
}

// NewWithHeartbeat is New with an explicit heartbeat interval.
func NewWithHeartbeat(simulationID string, interval time.Duration) *Broadcaster {
	b := &Broadcaster{
		simulationID: simulationID,
		subs:         make(map[int]Subscriber),
		stop:         make(chan struct{}),
	}
	go b.heartbeatLoop(interval)
	return b
}

// Publish stores snap as the latest snapshot and notifies every current
// subscriber, in the order spec.md §4.7 requires: subscribers only receive
// a snapshot whose (progress, status) differs from the last one they saw.
// Because Publish is the single writer, "the last one they saw" collapses
// to "the last one published" for every subscriber attached before this
// call.
func (b *Broadcaster) Publish(snap domain.Snapshot) {
	snap.SimulationID = b.simulationID
	snap.Timestamp = time.Now()

	b.mu.Lock()
	changed := !b.hasLatest || b.latest.Progress != snap.Progress || b.latest.Status != snap.Status
	b.latest = snap
	b.hasLatest = true
	subs := make([]Subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	if !changed {
		return
	}
	for _, s := range subs {
		s.Notify(snap)
	}

	if snap.Status == domain.StatusCompleted || snap.Status == domain.StatusFailed {
		b.detachAll()
	}
}

// Subscribe attaches a subscriber. A late subscriber immediately receives
// the latest snapshot (if any), then follows the stream, per spec.md §4.7.
// It returns an unsubscribe function.
func (b *Broadcaster) Subscribe(s Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextSubID
	b.nextSubID++
	b.subs[id] = s
	latest, has := b.latest, b.hasLatest
	b.mu.Unlock()

	if has {
		s.Notify(latest)
	}

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Latest returns the most recent snapshot, if any has been published yet.
// This backs the snapshot-read endpoint for clients that poll instead of
// holding an SSE connection.
func (b *Broadcaster) Latest() (domain.Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.hasLatest
}

// Close stops the heartbeat loop. Safe to call once a terminal snapshot
// has been published.
func (b *Broadcaster) Close() {
	select {
	case <-b.stop:
	default:
		close(b.stop)
	}
}

func (b *Broadcaster) detachAll() {
	b.mu.Lock()
	b.subs = make(map[int]Subscriber)
	b.mu.Unlock()
}

func (b *Broadcaster) heartbeatLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			b.mu.Lock()
			subs := make([]Subscriber, 0, len(b.subs))
			for _, s := range b.subs {
				subs = append(subs, s)
			}
			b.mu.Unlock()
			for _, s := range subs {
				s.Heartbeat()
			}
		}
	}
}
