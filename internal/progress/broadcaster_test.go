package progress_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fiscalsim/engine/internal/domain"
	"github.com/fiscalsim/engine/internal/progress"
)

type recordingSubscriber struct {
	mu         sync.Mutex
	snapshots  []domain.Snapshot
	heartbeats int
}

func (r *recordingSubscriber) Notify(s domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
}

func (r *recordingSubscriber) Heartbeat() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heartbeats++
}

func (r *recordingSubscriber) recorded() []domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Snapshot(nil), r.snapshots...)
}

func (r *recordingSubscriber) heartbeatCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heartbeats
}

func TestPublish_CoalescesSnapshotsWithUnchangedProgressAndStatus(t *testing.T) {
	// GIVEN a subscriber attached before any snapshot is published
	b := progress.New("sim-coalesce")
	defer b.Close()
	sub := &recordingSubscriber{}
	b.Subscribe(sub)

	// WHEN the same (progress, status) pair is published twice
	b.Publish(domain.Snapshot{Status: domain.StatusRunning, Progress: 25})
	b.Publish(domain.Snapshot{Status: domain.StatusRunning, Progress: 25})
	b.Publish(domain.Snapshot{Status: domain.StatusRunning, Progress: 30})

	// THEN the duplicate is coalesced away
	got := sub.recorded()
	require.Len(t, got, 2)
	require.Equal(t, 25, got[0].Progress)
	require.Equal(t, 30, got[1].Progress)
}

func TestSubscribe_LateSubscriberImmediatelyReceivesLatestSnapshot(t *testing.T) {
	b := progress.New("sim-late")
	defer b.Close()

	b.Publish(domain.Snapshot{Status: domain.StatusRunning, Progress: 40})

	// WHEN a subscriber attaches after publication
	sub := &recordingSubscriber{}
	b.Subscribe(sub)

	// THEN it sees the latest snapshot right away, then follows the stream
	b.Publish(domain.Snapshot{Status: domain.StatusRunning, Progress: 55})
	got := sub.recorded()
	require.Len(t, got, 2)
	require.Equal(t, 40, got[0].Progress)
	require.Equal(t, 55, got[1].Progress)
}

func TestPublish_TerminalSnapshotDetachesSubscribers(t *testing.T) {
	b := progress.New("sim-terminal")
	defer b.Close()
	sub := &recordingSubscriber{}
	b.Subscribe(sub)

	// WHEN a completed snapshot is delivered
	b.Publish(domain.Snapshot{Status: domain.StatusCompleted, Progress: 100})
	// AND more snapshots are published afterwards
	b.Publish(domain.Snapshot{Status: domain.StatusRunning, Progress: 10})

	// THEN the subscriber saw the terminal event and nothing after it
	got := sub.recorded()
	require.Len(t, got, 1)
	require.Equal(t, domain.StatusCompleted, got[0].Status)
	require.Equal(t, 100, got[0].Progress)
}

func TestPublish_FailedSnapshotCarriesMessageToSubscribers(t *testing.T) {
	b := progress.New("sim-failed")
	defer b.Close()
	sub := &recordingSubscriber{}
	b.Subscribe(sub)

	b.Publish(domain.Snapshot{Status: domain.StatusRunning, Progress: 60})
	b.Publish(domain.Snapshot{Status: domain.StatusFailed, Progress: 60, Message: "invariant I3 violated"})

	got := sub.recorded()
	require.Len(t, got, 2)
	require.Equal(t, domain.StatusFailed, got[1].Status)
	require.Equal(t, "invariant I3 violated", got[1].Message)
}

func TestHeartbeat_TicksWhileNoProgressChanges(t *testing.T) {
	// GIVEN a broadcaster with a very short heartbeat interval
	b := progress.NewWithHeartbeat("sim-heartbeat", 5*time.Millisecond)
	defer b.Close()
	sub := &recordingSubscriber{}
	b.Subscribe(sub)

	// WHEN no snapshots are published for a few intervals
	require.Eventually(t, func() bool {
		return sub.heartbeatCount() >= 2
	}, time.Second, time.Millisecond)
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	b := progress.New("sim-unsub")
	defer b.Close()
	sub := &recordingSubscriber{}
	unsubscribe := b.Subscribe(sub)

	b.Publish(domain.Snapshot{Status: domain.StatusRunning, Progress: 10})
	unsubscribe()
	b.Publish(domain.Snapshot{Status: domain.StatusRunning, Progress: 20})

	require.Len(t, sub.recorded(), 1)
}
