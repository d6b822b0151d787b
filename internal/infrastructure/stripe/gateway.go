package stripe

import (
	"context"
	"fmt"

	stripesdk "github.com/stripe/stripe-go/v76"
	stripeclient "github.com/stripe/stripe-go/v76/client"

	"github.com/brnno-tech/brnno-api/internal/config"
	"github.com/brnno-tech/brnno-api/internal/domain"
)

// Gateway wraps the Stripe client. It uses an explicit client.API instead of
// the SDK's package-level key so tests and multi-tenant setups can inject
// their own instance.
type Gateway struct {
	api *stripeclient.API
}

func NewGateway(cfg *config.Config) (*Gateway, error) {
	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("stripe secret key not configured: %w", domain.ErrUnavailable)
	}
	api := &stripeclient.API{}
	api.Init(cfg.StripeSecretKey, nil)
	return &Gateway{api: api}, nil
}

// CreateIntentInput is one pending charge authorization request.
type CreateIntentInput struct {
	AmountCents    int64
	Currency       string
	IdempotencyKey string
	ServiceAddress string
	Metadata       map[string]string
}

// CreateIntent opens exactly one pending charge authorization and returns
// the client confirmation secret. When a service address is present it is
// attached as the shipping location so Stripe's own tax machinery, if
// enabled, prices the same jurisdiction the estimator did.
func (g *Gateway) CreateIntent(ctx context.Context, in CreateIntentInput) (string, error) {
	currency := in.Currency
	if currency == "" {
		currency = string(stripesdk.CurrencyUSD)
	}

	params := &stripesdk.PaymentIntentParams{
		Amount:   stripesdk.Int64(in.AmountCents),
		Currency: stripesdk.String(currency),
		AutomaticPaymentMethods: &stripesdk.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripesdk.Bool(true),
		},
	}
	params.Context = ctx
	if in.IdempotencyKey != "" {
		params.IdempotencyKey = stripesdk.String(in.IdempotencyKey)
	}
	if in.ServiceAddress != "" {
		params.Shipping = &stripesdk.ShippingDetailsParams{
			Name: stripesdk.String("Service location"),
			Address: &stripesdk.AddressParams{
				Line1: stripesdk.String(in.ServiceAddress),
			},
		}
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}
