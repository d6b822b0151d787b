package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/brnno-tech/brnno-api/internal/application/notify"
	"github.com/brnno-tech/brnno-api/internal/domain"
	"github.com/brnno-tech/brnno-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// NotificationHandler handles the notification feed endpoints.
type NotificationHandler struct {
	svc *notify.Service
}

func NewNotificationHandler(svc *notify.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List returns the caller's notifications newest-first. Read errors degrade
// to an empty list: the feed always renders, possibly stale, never errors.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notifications, err := h.svc.ListForUser(r.Context(), claims.UserID, limit)
	if err != nil {
		slog.Warn("notification list failed, returning empty feed", "user_id", claims.UserID, "err", err)
		notifications = []domain.Notification{}
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// UnreadCount returns the caller's unread total, degrading to 0 on read
// errors.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	count, err := h.svc.CountUnread(r.Context(), claims.UserID)
	if err != nil {
		slog.Warn("unread count failed, returning zero", "user_id", claims.UserID, "err", err)
		count = 0
	}
	writeJSON(w, http.StatusOK, UnreadCountEnvelope{Count: count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	n, err := h.svc.MarkRead(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	marked, err := h.svc.MarkAllRead(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MarkAllReadEnvelope{Marked: marked})
}
