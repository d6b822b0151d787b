package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/brnno-tech/brnno-api/internal/application/feed"
	"github.com/brnno-tech/brnno-api/internal/domain"
	"github.com/brnno-tech/brnno-api/internal/transport/http/middleware"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// StreamHandler serves the live notification feed over WebSocket. Each
// connection carries two independent subscriptions — the feed snapshot
// stream and the unread-count stream — multiplexed as typed frames.
type StreamHandler struct {
	manager  *feed.Manager
	upgrader websocket.Upgrader
}

func NewStreamHandler(manager *feed.Manager) *StreamHandler {
	return &StreamHandler{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is enforced by the router's CORS layer; the token in
			// the upgrade request already authenticated the caller.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

type snapshotFrame struct {
	Type          string                `json:"type"`
	Notifications []domain.Notification `json:"notifications"`
}

type unreadCountFrame struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the response.
		slog.Warn("websocket upgrade failed", "user_id", claims.UserID, "err", err)
		return
	}
	defer conn.Close()

	sub := h.manager.Subscribe(r.Context(), claims.UserID)
	defer sub.Unsubscribe()
	countSub := h.manager.SubscribeUnreadCount(r.Context(), claims.UserID)
	defer countSub.Unsubscribe()

	// Reader: nothing meaningful arrives from the client, but the read loop
	// notices the peer closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, open := <-sub.C:
			if !open {
				return
			}
			if snap == nil {
				snap = []domain.Notification{}
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snapshotFrame{Type: "snapshot", Notifications: snap}); err != nil {
				return
			}
		case count, open := <-countSub.C:
			if !open {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(unreadCountFrame{Type: "unread_count", Count: count}); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
