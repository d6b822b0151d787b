package billing

import (
	"context"
	"log/slog"
	"math"

	"github.com/brnno-tech/brnno-api/internal/domain"
	"github.com/brnno-tech/brnno-api/internal/pkg/fallback"
)

// DefaultFlatRate is the single regional flat rate applied when the
// jurisdiction service is unreachable. One constant, not a lookup table.
const DefaultFlatRate = 0.0719

// JurisdictionClient prices a subtotal against an external tax-jurisdiction
// service.
type JurisdictionClient interface {
	Calculate(ctx context.Context, subtotalCents int64, j domain.Jurisdiction) (domain.TaxBreakdown, error)
}

// Estimator converts a raw subtotal plus an address into a
// subtotal/tax/total breakdown. Estimate is total: checkout must always
// show a monetary figure, so every upstream failure degrades to the flat
// rate instead of surfacing.
type Estimator struct {
	client   JurisdictionClient
	flatRate float64
}

// NewEstimator builds an Estimator. client may be nil (no jurisdiction
// service configured); flatRate <= 0 selects DefaultFlatRate.
func NewEstimator(client JurisdictionClient, flatRate float64) *Estimator {
	if flatRate <= 0 {
		flatRate = DefaultFlatRate
	}
	return &Estimator{client: client, flatRate: flatRate}
}

// Estimate prices subtotalCents for the jurisdiction. Tiers, first success
// wins:
//
//  1. precise — the external jurisdiction service, preferring the service
//     address over the billing postal code
//  2. flat-rate — round(subtotal × flatRate)
//
// A negative subtotal is coerced to 0 first, so the result is always a
// structurally valid breakdown with Total == Subtotal + Tax.
func (e *Estimator) Estimate(ctx context.Context, subtotalCents int64, j domain.Jurisdiction) domain.TaxBreakdown {
	if subtotalCents < 0 {
		subtotalCents = 0
	}

	breakdown, tier, err := fallback.First(ctx,
		fallback.Tier[domain.TaxBreakdown]{
			Name: "precise",
			Run: func(ctx context.Context) (domain.TaxBreakdown, error) {
				if e.client == nil {
					return domain.TaxBreakdown{}, domain.ErrUnavailable
				}
				return e.client.Calculate(ctx, subtotalCents, j)
			},
		},
		fallback.Tier[domain.TaxBreakdown]{
			Name: "flat-rate",
			Run: func(context.Context) (domain.TaxBreakdown, error) {
				return e.flatBreakdown(subtotalCents), nil
			},
		},
	)
	if err != nil {
		// Unreachable: the flat-rate tier cannot fail. Kept so the estimator
		// stays total even if the chain is reordered.
		breakdown = e.flatBreakdown(subtotalCents)
	}
	if tier != "precise" {
		slog.Warn("tax estimate degraded to flat rate", "subtotal_cents", subtotalCents, "zip", j.PostalCode)
	}
	return breakdown
}

func (e *Estimator) flatBreakdown(subtotalCents int64) domain.TaxBreakdown {
	tax := int64(math.Round(float64(subtotalCents) * e.flatRate))
	return domain.TaxBreakdown{
		Subtotal: subtotalCents,
		Tax:      tax,
		Total:    subtotalCents + tax,
	}
}
