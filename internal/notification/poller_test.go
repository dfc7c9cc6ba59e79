package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medipro/console/internal/storage"
)

type fakeThreads struct {
	mu      sync.Mutex
	threads []Thread
	err     error
	calls   int
}

func (f *fakeThreads) ListThreads(ctx context.Context) ([]Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.threads, nil
}

func (f *fakeThreads) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newPollerFixture(t *testing.T, threads *fakeThreads, interval time.Duration) (*Poller, *Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	kv := storage.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewStore(kv, logger)
	require.NoError(t, store.SetIdentity(context.Background(), "u1"))
	return NewPoller(store, threads, logger, interval), store
}

func TestPollEmitsAlertForUnreadThread(t *testing.T) {
	threads := &fakeThreads{threads: []Thread{{ID: "t1", Subject: "Billing issue", UnreadCount: 3}}}
	poller, store := newPollerFixture(t, threads, time.Minute)

	poller.pollOnce(context.Background())

	items := store.List()
	require.Len(t, items, 1)
	assert.Equal(t, CategoryInfo, items[0].Category)
	assert.Contains(t, items[0].Message, "Billing issue")
	assert.Contains(t, items[0].Message, "3")
	assert.Equal(t, SupportLink, items[0].Link)
	assert.False(t, items[0].Read)
}

// Two consecutive polls without the alert being read must not emit a
// second unread notification for the same subject.
func TestPollDedupsAcrossPolls(t *testing.T) {
	threads := &fakeThreads{threads: []Thread{{ID: "t1", Subject: "Billing issue", UnreadCount: 3}}}
	poller, store := newPollerFixture(t, threads, time.Minute)

	poller.pollOnce(context.Background())
	poller.pollOnce(context.Background())

	unread := 0
	for _, n := range store.List() {
		if !n.Read {
			unread++
		}
	}
	assert.Equal(t, 1, unread)
	assert.Len(t, store.List(), 1)
}

// Once the alert is read it no longer suppresses a fresh one: only unread
// notifications participate in the dedup key.
func TestPollReemitsAfterRead(t *testing.T) {
	threads := &fakeThreads{threads: []Thread{{ID: "t1", Subject: "Billing issue", UnreadCount: 1}}}
	poller, store := newPollerFixture(t, threads, time.Minute)
	ctx := context.Background()

	poller.pollOnce(ctx)
	require.NoError(t, store.MarkAllRead(ctx))
	poller.pollOnce(ctx)

	assert.Len(t, store.List(), 2)
	assert.Equal(t, 1, store.UnreadCount())
}

func TestPollSkipsThreadsWithoutUnread(t *testing.T) {
	threads := &fakeThreads{threads: []Thread{{ID: "t1", Subject: "Resolved", UnreadCount: 0}}}
	poller, store := newPollerFixture(t, threads, time.Minute)

	poller.pollOnce(context.Background())
	assert.Empty(t, store.List())
}

func TestPollFailureIsSilentAndKeepsData(t *testing.T) {
	threads := &fakeThreads{threads: []Thread{{ID: "t1", Subject: "Billing issue", UnreadCount: 1}}}
	poller, store := newPollerFixture(t, threads, time.Minute)
	ctx := context.Background()

	poller.pollOnce(ctx)
	require.Len(t, store.List(), 1)

	threads.mu.Lock()
	threads.err = errors.New("api down")
	threads.mu.Unlock()

	poller.pollOnce(ctx)
	assert.Len(t, store.List(), 1, "a failed poll must not clear notifications")
}

func TestStartPollsImmediatelyAndCancelStops(t *testing.T) {
	threads := &fakeThreads{}
	poller, _ := newPollerFixture(t, threads, 10*time.Millisecond)

	handle := poller.Start("u1")
	require.NotNil(t, handle)
	assert.True(t, poller.Scheduled())

	require.Eventually(t, func() bool { return threads.callCount() >= 2 }, time.Second, time.Millisecond)

	handle.Cancel()
	settled := threads.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, threads.callCount(), "no fetch may happen after cancel")
}

func TestStartWithEmptyIdentityStops(t *testing.T) {
	threads := &fakeThreads{}
	poller, _ := newPollerFixture(t, threads, 10*time.Millisecond)

	poller.Start("u1")
	require.True(t, poller.Scheduled())

	handle := poller.Start("")
	assert.Nil(t, handle)
	assert.False(t, poller.Scheduled())
}

func TestStopIsIdempotent(t *testing.T) {
	threads := &fakeThreads{}
	poller, _ := newPollerFixture(t, threads, 10*time.Millisecond)

	poller.Start("u1")
	poller.Stop()
	poller.Stop()
	assert.False(t, poller.Scheduled())
}

func TestRestartAfterIdentityReturns(t *testing.T) {
	threads := &fakeThreads{}
	poller, _ := newPollerFixture(t, threads, 10*time.Millisecond)

	poller.Start("u1")
	poller.Stop()
	before := threads.callCount()

	poller.Start("u2")
	require.Eventually(t, func() bool { return threads.callCount() > before }, time.Second, time.Millisecond)
	poller.Stop()
}
