package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brnno-tech/brnno-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is a scripted repository: tests mutate its fields between
// deliveries to drive mode fallback and snapshot changes.
type fakeStore struct {
	mu sync.Mutex

	indexBroken bool
	queryErr    error
	records     []domain.Notification
	unread      int

	indexedCalls int
	scanCalls    int
}

func (f *fakeStore) ListByUserIndexed(_ context.Context, userID string, _ int32) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexedCalls++
	if f.indexBroken {
		return nil, domain.ErrIndexMissing
	}
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.forUser(userID), nil
}

func (f *fakeStore) ListByUserScan(_ context.Context, userID string, _ int32) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scanCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.forUser(userID), nil
}

func (f *fakeStore) CountUnreadIndexed(_ context.Context, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexedCalls++
	if f.indexBroken {
		return 0, domain.ErrIndexMissing
	}
	if f.queryErr != nil {
		return 0, f.queryErr
	}
	return f.unread, nil
}

func (f *fakeStore) CountUnreadScan(_ context.Context, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scanCalls++
	if f.queryErr != nil {
		return 0, f.queryErr
	}
	return f.unread, nil
}

func (f *fakeStore) forUser(userID string) []domain.Notification {
	out := make([]domain.Notification, 0, len(f.records))
	for _, n := range f.records {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeStore) set(fn func(*fakeStore)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "stream closed unexpectedly")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		panic("unreachable")
	}
}

func notifAt(id, userID string, createdAt time.Time) domain.Notification {
	return domain.Notification{NotificationID: id, UserID: userID, CreatedAt: createdAt}
}

func TestSubscribe_DeliversSortedSnapshots(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeStore{records: []domain.Notification{
		notifAt("old", "u1", now.Add(-time.Hour)),
		notifAt("new", "u1", now),
		notifAt("other", "u2", now),
	}}
	m := NewManager(store, 10*time.Millisecond, 50)

	sub := m.Subscribe(context.Background(), "u1")
	defer sub.Unsubscribe()

	snap := receive(t, sub.C)
	require.Len(t, snap, 2)
	assert.Equal(t, "new", snap[0].NotificationID)
	assert.Equal(t, "old", snap[1].NotificationID)
	assert.Equal(t, ModeIndexed, sub.Mode())
}

func TestSubscribe_SuppressesUnchangedSnapshots(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeStore{records: []domain.Notification{notifAt("n1", "u1", now)}}
	m := NewManager(store, 10*time.Millisecond, 50)

	sub := m.Subscribe(context.Background(), "u1")
	defer sub.Unsubscribe()

	receive(t, sub.C)

	// Nothing changed; nothing may arrive even across several poll ticks.
	select {
	case snap := <-sub.C:
		t.Fatalf("unexpected redelivery of unchanged snapshot: %v", snap)
	case <-time.After(100 * time.Millisecond):
	}

	// A read-flag flip changes the fingerprint and is redelivered.
	store.set(func(f *fakeStore) { f.records[0].Read = true })
	snap := receive(t, sub.C)
	require.Len(t, snap, 1)
	assert.True(t, snap[0].Read)
}

func TestSubscribe_IndexMissingFallsBackPermanently(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeStore{
		indexBroken: true,
		records: []domain.Notification{
			notifAt("a", "u1", now.Add(-2*time.Minute)),
			notifAt("b", "u1", now),
		},
	}
	m := NewManager(store, 10*time.Millisecond, 50)

	sub := m.Subscribe(context.Background(), "u1")
	defer sub.Unsubscribe()

	snap := receive(t, sub.C)
	require.Len(t, snap, 2)
	assert.Equal(t, "b", snap[0].NotificationID, "degraded mode still sorts newest-first")
	assert.Equal(t, ModeUnindexed, sub.Mode())

	// Force another delivery and check the indexed path is never retried,
	// even though the index is "fixed" now.
	store.set(func(f *fakeStore) {
		f.indexBroken = false
		f.records = append(f.records, notifAt("c", "u1", now.Add(time.Minute)))
	})
	receive(t, sub.C)

	store.mu.Lock()
	indexedCalls := store.indexedCalls
	store.mu.Unlock()
	assert.Equal(t, 1, indexedCalls, "fallback is one-way per subscription")
}

func TestSubscribe_QueryErrorDeliversEmpty(t *testing.T) {
	store := &fakeStore{queryErr: errors.New("throttled")}
	m := NewManager(store, 10*time.Millisecond, 50)

	sub := m.Subscribe(context.Background(), "u1")
	defer sub.Unsubscribe()

	snap := receive(t, sub.C)
	assert.Empty(t, snap)

	// Recovery: the next successful query is a change and gets delivered.
	store.set(func(f *fakeStore) {
		f.queryErr = nil
		f.records = []domain.Notification{notifAt("n1", "u1", time.Now().UTC())}
	})
	snap = receive(t, sub.C)
	require.Len(t, snap, 1)
}

func TestUnsubscribe_StopsDeliveriesAndClosesStream(t *testing.T) {
	store := &fakeStore{records: []domain.Notification{notifAt("n1", "u1", time.Now().UTC())}}
	m := NewManager(store, 10*time.Millisecond, 50)

	sub := m.Subscribe(context.Background(), "u1")
	receive(t, sub.C)

	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok, "channel must be closed, not delivering")
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after unsubscribe")
	}
}

func TestSubscribe_ContextCancellationClosesStream(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store, 10*time.Millisecond, 50)

	ctx, cancel := context.WithCancel(context.Background())
	sub := m.Subscribe(ctx, "u1")
	receive(t, sub.C)
	cancel()

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after context cancellation")
	}
}

func TestSubscribeUnreadCount_DeliversOnChange(t *testing.T) {
	store := &fakeStore{unread: 3}
	m := NewManager(store, 10*time.Millisecond, 50)

	sub := m.SubscribeUnreadCount(context.Background(), "u1")
	defer sub.Unsubscribe()

	assert.Equal(t, 3, receive(t, sub.C))

	store.set(func(f *fakeStore) { f.unread = 5 })
	assert.Equal(t, 5, receive(t, sub.C))
	assert.Equal(t, ModeIndexed, sub.Mode())
}

func TestSubscribeUnreadCount_IndexMissingFallsBack(t *testing.T) {
	store := &fakeStore{indexBroken: true, unread: 2}
	m := NewManager(store, 10*time.Millisecond, 50)

	sub := m.SubscribeUnreadCount(context.Background(), "u1")
	defer sub.Unsubscribe()

	assert.Equal(t, 2, receive(t, sub.C))
	assert.Equal(t, ModeUnindexed, sub.Mode())
}

func TestIndependentSubscriptionsDegradeIndependently(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeStore{records: []domain.Notification{notifAt("n1", "u1", now)}}
	m := NewManager(store, 10*time.Millisecond, 50)

	healthy := m.Subscribe(context.Background(), "u1")
	defer healthy.Unsubscribe()
	receive(t, healthy.C)

	store.set(func(f *fakeStore) { f.indexBroken = true })
	degraded := m.Subscribe(context.Background(), "u1")
	defer degraded.Unsubscribe()
	receive(t, degraded.C)

	assert.Equal(t, ModeUnindexed, degraded.Mode())
}
