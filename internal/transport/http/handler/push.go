package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brnno-tech/brnno-api/internal/application/push"
	"github.com/brnno-tech/brnno-api/internal/domain"
	"github.com/brnno-tech/brnno-api/internal/pkg/validate"
)

// PushHandler handles the direct push endpoint. Unlike the notifier path,
// this surface reports failures: 503 when the push backend has no
// configured credentials, since push has no fallback tier.
type PushHandler struct {
	bridge *push.Bridge
}

func NewPushHandler(bridge *push.Bridge) *PushHandler {
	return &PushHandler{bridge: bridge}
}

type pushRequest struct {
	FCMToken string            `json:"fcmToken"`
	UserID   string            `json:"userId"`
	Title    string            `json:"title" validate:"required"`
	Body     string            `json:"body" validate:"required"`
	Data     map[string]string `json:"data"`
}

func (h *PushHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.FCMToken == "" && req.UserID == "" {
		writeError(w, http.StatusBadRequest, "fcmToken or userId is required")
		return
	}

	var (
		messageID string
		err       error
	)
	if req.FCMToken != "" {
		messageID, err = h.bridge.Send(r.Context(), req.FCMToken, req.Title, req.Body, req.Data)
	} else {
		messageID, err = h.bridge.SendToUser(r.Context(), req.UserID, req.Title, req.Body, req.Data)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "push backend not configured")
			return
		}
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PushEnvelope{Success: true, MessageID: messageID})
}
