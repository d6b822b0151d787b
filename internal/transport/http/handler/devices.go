package handler

import (
	"encoding/json"
	"net/http"

	"github.com/brnno-tech/brnno-api/internal/application/push"
	"github.com/brnno-tech/brnno-api/internal/transport/http/middleware"
)

// DeviceHandler handles push-token registration.
type DeviceHandler struct {
	bridge *push.Bridge
}

func NewDeviceHandler(bridge *push.Bridge) *DeviceHandler {
	return &DeviceHandler{bridge: bridge}
}

type registerTokenRequest struct {
	Token string `json:"token"`
}

// RegisterToken stores the caller's device token. One live token per user,
// last write wins.
func (h *DeviceHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req registerTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.bridge.RegisterToken(r.Context(), claims.UserID, req.Token); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "token registered"})
}
