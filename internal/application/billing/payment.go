package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/brnno-tech/brnno-api/internal/domain"
	stripegw "github.com/brnno-tech/brnno-api/internal/infrastructure/stripe"
)

// PaymentGateway opens one pending charge authorization per call.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, in stripegw.CreateIntentInput) (string, error)
}

// IntentBuilder turns a finalized total into a charge authorization.
// Unlike the Estimator it is strict: a zero or negative charge is a
// payment-integrity violation, not a display nicety, so bad amounts are
// rejected instead of coerced.
type IntentBuilder struct {
	gateway PaymentGateway
}

func NewIntentBuilder(gateway PaymentGateway) *IntentBuilder {
	return &IntentBuilder{gateway: gateway}
}

// CreateIntent validates the amount and requests a charge authorization,
// attaching the service-performed jurisdiction so the gateway's own tax
// machinery agrees with the estimator. When bookingID is set, a
// deterministic idempotency key derived from booking id + amount lets a
// retried client request re-return the same authorization instead of
// creating a duplicate.
func (b *IntentBuilder) CreateIntent(ctx context.Context, amountCents float64, bookingID string, j domain.Jurisdiction, metadata map[string]string) (string, error) {
	if math.IsNaN(amountCents) || math.IsInf(amountCents, 0) {
		return "", fmt.Errorf("amount must be a finite number: %w", domain.ErrBadRequest)
	}
	if amountCents != math.Trunc(amountCents) {
		return "", fmt.Errorf("amount must be an integer number of cents: %w", domain.ErrBadRequest)
	}
	if amountCents <= 0 {
		return "", fmt.Errorf("amount must be positive: %w", domain.ErrBadRequest)
	}
	if b.gateway == nil {
		return "", fmt.Errorf("payment gateway not configured: %w", domain.ErrUnavailable)
	}
	amount := int64(amountCents)

	md := make(map[string]string, len(metadata)+3)
	for k, v := range metadata {
		md[k] = v
	}
	if j.PostalCode != "" {
		md["tax_zip"] = j.PostalCode
	}
	if j.Region != "" {
		md["tax_state"] = j.Region
	}
	if bookingID != "" {
		md["booking_id"] = bookingID
	}

	return b.gateway.CreateIntent(ctx, stripegw.CreateIntentInput{
		AmountCents:    amount,
		IdempotencyKey: idempotencyKey(bookingID, amount),
		ServiceAddress: j.ServiceAddress,
		Metadata:       md,
	})
}

// idempotencyKey derives a stable key from the booking and amount. Empty
// when there is no booking id: such calls keep the original
// one-authorization-per-call behavior.
func idempotencyKey(bookingID string, amountCents int64) string {
	if bookingID == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", bookingID, amountCents)))
	return hex.EncodeToString(sum[:])
}
