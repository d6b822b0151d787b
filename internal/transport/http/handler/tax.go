package handler

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/brnno-tech/brnno-api/internal/application/billing"
	"github.com/brnno-tech/brnno-api/internal/domain"
)

// TaxHandler handles tax estimation. The endpoint honors the
// graceful-degradation contract: it always answers 200 with a structurally
// valid breakdown, whatever the upstream state.
type TaxHandler struct {
	estimator *billing.Estimator
}

func NewTaxHandler(estimator *billing.Estimator) *TaxHandler {
	return &TaxHandler{estimator: estimator}
}

type taxRequest struct {
	AmountCents    float64 `json:"amountCents"`
	ZipCode        string  `json:"zipCode"`
	State          string  `json:"state"`
	ServiceAddress string  `json:"serviceAddress"`
}

// Estimate computes a subtotal/tax/total breakdown. A missing or malformed
// amount is coerced to 0 rather than rejected — checkout must always show a
// total.
func (h *TaxHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req taxRequest
	// Decode errors leave req zeroed; the estimator treats that as a zero
	// subtotal.
	_ = json.NewDecoder(r.Body).Decode(&req)

	subtotal := int64(0)
	if !math.IsNaN(req.AmountCents) && !math.IsInf(req.AmountCents, 0) && req.AmountCents > 0 {
		subtotal = int64(math.Round(req.AmountCents))
	}

	breakdown := h.estimator.Estimate(r.Context(), subtotal, domain.Jurisdiction{
		PostalCode:     req.ZipCode,
		Region:         req.State,
		ServiceAddress: req.ServiceAddress,
	})
	writeJSON(w, http.StatusOK, breakdown)
}
