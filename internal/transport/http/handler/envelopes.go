package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brnno-tech/brnno-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// IntentEnvelope wraps payment-intent responses.
type IntentEnvelope struct {
	ClientSecret string `json:"clientSecret"`
}

// PushEnvelope wraps direct push responses.
type PushEnvelope struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
}

// UnreadCountEnvelope wraps unread-count responses.
type UnreadCountEnvelope struct {
	Count int `json:"count"`
}

// MarkAllReadEnvelope reports how many records a batch marked.
type MarkAllReadEnvelope struct {
	Marked int `json:"marked"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors to HTTP status codes.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
