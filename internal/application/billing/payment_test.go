package billing

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/brnno-tech/brnno-api/internal/domain"
	stripegw "github.com/brnno-tech/brnno-api/internal/infrastructure/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	lastInput stripegw.CreateIntentInput
	calls     int
	err       error
}

func (f *fakeGateway) CreateIntent(_ context.Context, in stripegw.CreateIntentInput) (string, error) {
	f.calls++
	f.lastInput = in
	if f.err != nil {
		return "", f.err
	}
	return "pi_secret_123", nil
}

func TestCreateIntent_RejectsInvalidAmounts(t *testing.T) {
	gw := &fakeGateway{}
	b := NewIntentBuilder(gw)

	for _, amount := range []float64{0, -500, math.NaN(), math.Inf(1), 10.5} {
		_, err := b.CreateIntent(context.Background(), amount, "", domain.Jurisdiction{}, nil)
		require.Error(t, err, "amount=%v", amount)
		assert.True(t, errors.Is(err, domain.ErrBadRequest), "amount=%v", amount)
	}
	assert.Zero(t, gw.calls, "invalid amounts must never reach the gateway")
}

func TestCreateIntent_AcceptsBoundaryAmounts(t *testing.T) {
	gw := &fakeGateway{}
	b := NewIntentBuilder(gw)

	for _, amount := range []float64{1, 999999} {
		secret, err := b.CreateIntent(context.Background(), amount, "", domain.Jurisdiction{}, nil)
		require.NoError(t, err, "amount=%v", amount)
		assert.Equal(t, "pi_secret_123", secret)
		assert.Equal(t, int64(amount), gw.lastInput.AmountCents)
	}
}

func TestCreateIntent_NoGatewayConfigured(t *testing.T) {
	b := NewIntentBuilder(nil)
	_, err := b.CreateIntent(context.Background(), 1000, "", domain.Jurisdiction{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}

func TestCreateIntent_AttachesJurisdiction(t *testing.T) {
	gw := &fakeGateway{}
	b := NewIntentBuilder(gw)

	_, err := b.CreateIntent(context.Background(), 2500, "b1", domain.Jurisdiction{
		PostalCode:     "94107",
		Region:         "CA",
		ServiceAddress: "500 Detail Ave, San Francisco CA",
	}, map[string]string{"channel": "mobile"})
	require.NoError(t, err)

	assert.Equal(t, "500 Detail Ave, San Francisco CA", gw.lastInput.ServiceAddress)
	assert.Equal(t, "94107", gw.lastInput.Metadata["tax_zip"])
	assert.Equal(t, "CA", gw.lastInput.Metadata["tax_state"])
	assert.Equal(t, "b1", gw.lastInput.Metadata["booking_id"])
	assert.Equal(t, "mobile", gw.lastInput.Metadata["channel"])
}

func TestCreateIntent_IdempotencyKey(t *testing.T) {
	gw := &fakeGateway{}
	b := NewIntentBuilder(gw)

	_, err := b.CreateIntent(context.Background(), 2500, "b1", domain.Jurisdiction{}, nil)
	require.NoError(t, err)
	first := gw.lastInput.IdempotencyKey
	require.NotEmpty(t, first)

	// Same booking and amount — same key, so a retried request cannot open a
	// second authorization.
	_, err = b.CreateIntent(context.Background(), 2500, "b1", domain.Jurisdiction{}, nil)
	require.NoError(t, err)
	assert.Equal(t, first, gw.lastInput.IdempotencyKey)

	// Different amount — different key.
	_, err = b.CreateIntent(context.Background(), 3000, "b1", domain.Jurisdiction{}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, gw.lastInput.IdempotencyKey)

	// No booking id — no key; the original per-call behavior stands.
	_, err = b.CreateIntent(context.Background(), 2500, "", domain.Jurisdiction{}, nil)
	require.NoError(t, err)
	assert.Empty(t, gw.lastInput.IdempotencyKey)
}

func TestCreateIntent_GatewayFailurePropagates(t *testing.T) {
	gw := &fakeGateway{err: errors.New("card network unreachable")}
	b := NewIntentBuilder(gw)

	_, err := b.CreateIntent(context.Background(), 1000, "", domain.Jurisdiction{}, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrBadRequest))
}
