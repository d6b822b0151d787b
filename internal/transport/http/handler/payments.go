package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brnno-tech/brnno-api/internal/application/billing"
	"github.com/brnno-tech/brnno-api/internal/domain"
)

// PaymentHandler handles charge-authorization endpoints.
type PaymentHandler struct {
	builder *billing.IntentBuilder
}

func NewPaymentHandler(builder *billing.IntentBuilder) *PaymentHandler {
	return &PaymentHandler{builder: builder}
}

type intentRequest struct {
	AmountCents    *float64          `json:"amountCents"`
	BookingID      string            `json:"bookingId"`
	Metadata       map[string]string `json:"metadata"`
	ZipCode        string            `json:"zipCode"`
	State          string            `json:"state"`
	ServiceAddress string            `json:"serviceAddress"`
}

// CreateIntent opens one pending charge authorization. Unlike the tax
// endpoint this boundary is strict: a missing or non-positive amount is a
// 400, and gateway failures surface as 502.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AmountCents == nil {
		writeError(w, http.StatusBadRequest, "amountCents is required")
		return
	}

	secret, err := h.builder.CreateIntent(r.Context(), *req.AmountCents, req.BookingID, domain.Jurisdiction{
		PostalCode:     req.ZipCode,
		Region:         req.State,
		ServiceAddress: req.ServiceAddress,
	}, req.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadRequest):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, IntentEnvelope{ClientSecret: secret})
}
