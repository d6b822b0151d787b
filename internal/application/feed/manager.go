// Package feed maintains live, cancellable snapshot streams over a user's
// notifications. The document store offers snapshot queries, not server
// push, so streams are poll-driven: each subscription re-queries on an
// interval and delivers a snapshot whenever the result changes.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/brnno-tech/brnno-api/internal/application/notify"
	"github.com/brnno-tech/brnno-api/internal/domain"
)

// Mode is the query strategy of a subscription.
type Mode int32

const (
	// ModeIndexed uses the composite index: equality filter, descending
	// order by creation time, limit.
	ModeIndexed Mode = iota
	// ModeUnindexed is the degraded strategy: equality filter and limit
	// only, with the ordering recovered client-side.
	ModeUnindexed
)

func (m Mode) String() string {
	if m == ModeUnindexed {
		return "unindexed"
	}
	return "indexed"
}

// store is the slice of the notification repository the manager polls.
type store interface {
	ListByUserIndexed(ctx context.Context, userID string, limit int32) ([]domain.Notification, error)
	ListByUserScan(ctx context.Context, userID string, limit int32) ([]domain.Notification, error)
	CountUnreadIndexed(ctx context.Context, userID string) (int, error)
	CountUnreadScan(ctx context.Context, userID string) (int, error)
}

// Manager opens feed and unread-count subscriptions. Subscriptions are
// independent: each owns its goroutine, its query mode and its lifecycle,
// and two subscriptions for the same user are never coordinated.
type Manager struct {
	repo     store
	interval time.Duration
	limit    int32
}

func NewManager(repo store, interval time.Duration, limit int) *Manager {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if limit <= 0 {
		limit = 50
	}
	return &Manager{repo: repo, interval: interval, limit: int32(limit)}
}

// Subscription is a live notification-feed stream. Snapshots arrive on C,
// always sorted newest-first; an empty snapshot means "possibly stale", not
// "definitely zero". C is closed after Unsubscribe.
type Subscription struct {
	C <-chan []domain.Notification

	mu       sync.Mutex
	mode     Mode
	stop     chan struct{}
	stopOnce sync.Once
}

// Unsubscribe detaches the stream. No further deliveries occur and C is
// closed. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Mode reports the subscription's current query mode.
func (s *Subscription) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Subscription) setMode(m Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// Subscribe opens a live feed stream for the user. The stream starts in
// indexed mode; if the store reports the composite index missing it falls
// back to unindexed mode for the remainder of this subscription's lifetime.
func (m *Manager) Subscribe(ctx context.Context, userID string) *Subscription {
	ch := make(chan []domain.Notification)
	sub := &Subscription{C: ch, stop: make(chan struct{})}

	go m.poll(ctx, sub, ch, func(pollCtx context.Context) (string, []domain.Notification, error) {
		var (
			snap []domain.Notification
			err  error
		)
		if sub.Mode() == ModeIndexed {
			snap, err = m.repo.ListByUserIndexed(pollCtx, userID, m.limit)
			if errors.Is(err, domain.ErrIndexMissing) {
				slog.Warn("feed index missing, falling back to unindexed queries", "user_id", userID)
				sub.setMode(ModeUnindexed)
				snap, err = m.repo.ListByUserScan(pollCtx, userID, m.limit)
			}
		} else {
			snap, err = m.repo.ListByUserScan(pollCtx, userID, m.limit)
		}
		if err != nil {
			// Deliver empty rather than nothing: the caller treats empty as
			// possibly stale.
			slog.Warn("feed query failed, delivering empty snapshot", "user_id", userID, "err", err)
			return "error", []domain.Notification{}, nil
		}
		notify.SortNewestFirst(snap)
		return fingerprint(snap), snap, nil
	})

	return sub
}

// poll drives one subscription: an immediate query, then one per tick,
// delivering only when the snapshot changed since the last delivery.
func (m *Manager) poll(ctx context.Context, sub *Subscription, ch chan<- []domain.Notification, query func(context.Context) (string, []domain.Notification, error)) {
	defer close(ch)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	lastFP := ""
	delivered := false
	for {
		fp, snap, err := query(ctx)
		if err == nil && (!delivered || fp != lastFP) {
			select {
			case ch <- snap:
				delivered = true
				lastFP = fp
			case <-sub.stop:
				return
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ticker.C:
		case <-sub.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// fingerprint identifies a snapshot by record identity and read state, so
// read-flag flips redeliver but equal snapshots are suppressed.
func fingerprint(snap []domain.Notification) string {
	var b strings.Builder
	for _, n := range snap {
		b.WriteString(n.NotificationID)
		if n.Read {
			b.WriteByte('r')
		}
		b.WriteByte('|')
	}
	return b.String()
}

// CountSubscription is a live unread-count stream. Counts arrive on C; a
// delivery of 0 after an error means "possibly stale". C is closed after
// Unsubscribe.
type CountSubscription struct {
	C <-chan int

	mu       sync.Mutex
	mode     Mode
	stop     chan struct{}
	stopOnce sync.Once
}

func (s *CountSubscription) Unsubscribe() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *CountSubscription) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SubscribeUnreadCount opens a live unread-count stream for the user, with
// the same one-way index fallback as Subscribe.
func (m *Manager) SubscribeUnreadCount(ctx context.Context, userID string) *CountSubscription {
	ch := make(chan int)
	sub := &CountSubscription{C: ch, stop: make(chan struct{})}

	go func() {
		defer close(ch)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		last := -1
		delivered := false
		for {
			count, err := m.count(ctx, sub, userID)
			if err != nil {
				slog.Warn("unread count query failed, delivering zero", "user_id", userID, "err", err)
				count = 0
			}
			if !delivered || count != last {
				select {
				case ch <- count:
					delivered = true
					last = count
				case <-sub.stop:
					return
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ticker.C:
			case <-sub.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return sub
}

func (m *Manager) count(ctx context.Context, sub *CountSubscription, userID string) (int, error) {
	sub.mu.Lock()
	mode := sub.mode
	sub.mu.Unlock()

	if mode == ModeIndexed {
		count, err := m.repo.CountUnreadIndexed(ctx, userID)
		if errors.Is(err, domain.ErrIndexMissing) {
			slog.Warn("unread-count index missing, falling back to unindexed queries", "user_id", userID)
			sub.mu.Lock()
			sub.mode = ModeUnindexed
			sub.mu.Unlock()
			return m.repo.CountUnreadScan(ctx, userID)
		}
		return count, err
	}
	return m.repo.CountUnreadScan(ctx, userID)
}
