package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/brnno-tech/brnno-api/internal/domain"
	"github.com/brnno-tech/brnno-api/internal/pkg/id"
	"golang.org/x/sync/errgroup"
)

const defaultListLimit = 50

// store is the slice of the notification repository the service needs.
// Indexed methods return domain.ErrIndexMissing when the composite index is
// absent; the service then degrades to the scan equivalents.
type store interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByUserIndexed(ctx context.Context, userID string, limit int32) ([]domain.Notification, error)
	ListByUserScan(ctx context.Context, userID string, limit int32) ([]domain.Notification, error)
	ListUnreadIndexed(ctx context.Context, userID string) ([]domain.Notification, error)
	CountUnreadIndexed(ctx context.Context, userID string) (int, error)
	CountUnreadScan(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, notificationID string, readAt time.Time) (bool, error)
}

// Pusher is the best-effort out-of-band delivery bridge. Deliver never
// reports failure to its caller; the in-app record is the record of truth.
type Pusher interface {
	Deliver(ctx context.Context, userID, title, body string, data map[string]string)
}

// Service is the notification record store: it owns creation, querying and
// read-state mutation of notification records.
type Service struct {
	repo store
	push Pusher
}

// NewService builds the record store service. push may be nil when no push
// backend is configured; in-app records are unaffected.
func NewService(repo store, push Pusher) *Service {
	return &Service{repo: repo, push: push}
}

// Create inserts a new unread notification with a server-assigned id and
// timestamp and returns the id. Store errors propagate: losing the durable
// record is a real failure, unlike push.
func (s *Service) Create(ctx context.Context, n *domain.Notification) (string, error) {
	n.NotificationID = id.New()
	n.Read = false
	n.ReadAt = nil
	n.CreatedAt = time.Now().UTC()
	if err := s.repo.Put(ctx, n); err != nil {
		return "", fmt.Errorf("create notification: %w", err)
	}
	return n.NotificationID, nil
}

// ListForUser returns the user's notifications newest-first, bounded by
// limit (default 50). A missing composite index degrades to the unindexed
// query; ordering is enforced client-side either way.
func (s *Service) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	notifications, err := s.repo.ListByUserIndexed(ctx, userID, int32(limit))
	if errors.Is(err, domain.ErrIndexMissing) {
		notifications, err = s.repo.ListByUserScan(ctx, userID, int32(limit))
	}
	if err != nil {
		return nil, err
	}
	SortNewestFirst(notifications)
	return notifications, nil
}

// CountUnread returns the number of read=false records for the user.
func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	n, err := s.repo.CountUnreadIndexed(ctx, userID)
	if errors.Is(err, domain.ErrIndexMissing) {
		n, err = s.repo.CountUnreadScan(ctx, userID)
	}
	return n, err
}

// MarkRead flips the record to read and stamps read_at. Idempotent: a
// second call is a no-op that leaves read_at untouched. The record must
// belong to userID.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	if _, err := s.repo.MarkRead(ctx, notificationID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, notificationID)
}

// MarkAllRead marks every currently-unread record for the user as one
// logical batch: snapshot the unread set, then fire the updates in parallel
// and join. A record created after the snapshot is not included — it can
// only stay unread, never be over-marked, which is the safe direction.
// Returns the number of records marked.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	unread, err := s.repo.ListUnreadIndexed(ctx, userID)
	if errors.Is(err, domain.ErrIndexMissing) {
		var all []domain.Notification
		all, err = s.repo.ListByUserScan(ctx, userID, int32(defaultListLimit*10))
		if err == nil {
			unread = unread[:0]
			for _, n := range all {
				if !n.Read {
					unread = append(unread, n)
				}
			}
		}
	}
	if err != nil {
		return 0, err
	}

	readAt := time.Now().UTC()
	g, gctx := errgroup.WithContext(ctx)
	for _, n := range unread {
		notificationID := n.NotificationID
		g.Go(func() error {
			_, err := s.repo.MarkRead(gctx, notificationID, readAt)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(unread), nil
}

// SortNewestFirst orders notifications by creation time descending, the
// presentation order callers observe regardless of query mode.
func SortNewestFirst(notifications []domain.Notification) {
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
}
