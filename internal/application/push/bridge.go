// Package push is the best-effort delivery bridge: it resolves a user's
// registered device token and hands the message to the push gateway. The
// in-app record already holds the durable copy, so delivery failures are
// logged and never propagated to notifier callers.
package push

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brnno-tech/brnno-api/internal/domain"
	snsinfra "github.com/brnno-tech/brnno-api/internal/infrastructure/sns"
)

// tokenStore resolves and stores the per-user device token.
type tokenStore interface {
	GetFCMToken(ctx context.Context, userID string) (string, error)
	SetFCMToken(ctx context.Context, userID, token string) error
}

// Bridge connects user ids to the push gateway.
type Bridge struct {
	tokens tokenStore
	sender snsinfra.PushSender
}

// NewBridge builds the bridge. sender may be nil when the push backend has
// no configured credentials; sends then fail with domain.ErrUnavailable.
func NewBridge(tokens tokenStore, sender snsinfra.PushSender) *Bridge {
	return &Bridge{tokens: tokens, sender: sender}
}

// RegisterToken stores the caller's device token, last-write-wins.
func (b *Bridge) RegisterToken(ctx context.Context, userID, token string) error {
	if token == "" {
		return fmt.Errorf("token is required: %w", domain.ErrBadRequest)
	}
	return b.tokens.SetFCMToken(ctx, userID, token)
}

// Send delivers directly to a device token and returns the gateway message
// id. Used by the direct push endpoint, which does surface failures.
func (b *Bridge) Send(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	if b.sender == nil {
		return "", fmt.Errorf("push backend not configured: %w", domain.ErrUnavailable)
	}
	return b.sender.SendPush(ctx, token, title, body, data)
}

// SendToUser resolves the user's current token and delivers to it.
func (b *Bridge) SendToUser(ctx context.Context, userID, title, body string, data map[string]string) (string, error) {
	token, err := b.tokens.GetFCMToken(ctx, userID)
	if err != nil {
		return "", err
	}
	return b.Send(ctx, token, title, body, data)
}

// Deliver is the notifier-facing entry point: best-effort, no return value.
// Missing token, gateway error, network failure — all are logged and
// swallowed.
func (b *Bridge) Deliver(ctx context.Context, userID, title, body string, data map[string]string) {
	if _, err := b.SendToUser(ctx, userID, title, body, data); err != nil {
		slog.Warn("push delivery failed", "user_id", userID, "err", err)
	}
}
