package handler

import (
	"encoding/json"
	"net/http"

	"github.com/brnno-tech/brnno-api/internal/application/notify"
	"github.com/brnno-tech/brnno-api/internal/domain"
	"github.com/brnno-tech/brnno-api/internal/pkg/validate"
)

// BookingEventHandler ingests booking-domain events and dispatches them to
// the matching notifier. This is the producer surface the booking workflow
// calls after a state change commits.
type BookingEventHandler struct {
	svc *notify.Service
}

func NewBookingEventHandler(svc *notify.Service) *BookingEventHandler {
	return &BookingEventHandler{svc: svc}
}

type bookingEventRequest struct {
	Type    string              `json:"type" validate:"required"`
	Booking domain.BookingEvent `json:"booking"`
}

type bookingEventResponse struct {
	NotificationID string `json:"notification_id"`
}

func (h *BookingEventHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req bookingEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req.Booking); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		notificationID string
		err            error
	)
	switch req.Type {
	case domain.NotifTypeNewBooking:
		notificationID, err = h.svc.NotifyNewBooking(r.Context(), req.Booking)
	case domain.NotifTypeBookingConfirmed:
		notificationID, err = h.svc.NotifyBookingConfirmed(r.Context(), req.Booking)
	case domain.NotifTypeBookingCancelled:
		notificationID, err = h.svc.NotifyBookingCancelled(r.Context(), req.Booking)
	case domain.NotifTypePaymentReceived:
		notificationID, err = h.svc.NotifyPaymentReceived(r.Context(), req.Booking)
	default:
		writeError(w, http.StatusBadRequest, "unknown event type: "+req.Type)
		return
	}
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingEventResponse{NotificationID: notificationID})
}
