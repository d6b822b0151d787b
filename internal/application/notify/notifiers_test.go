package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/brnno-tech/brnno-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func detailingBooking() domain.BookingEvent {
	return domain.BookingEvent{
		BookingID:      "b1",
		CustomerUserID: "cust-1",
		ProviderUserID: "prov-1",
		Date:           "2025-10-31",
		Time:           "2:30 PM",
		Services: []domain.BookedService{
			{Name: "Wash", PriceCents: 4500},
			{Name: "Wax", PriceCents: 6000},
			{Name: "Vacuum", PriceCents: 2500},
		},
		AmountCents: 13000,
	}
}

func TestNotifyNewBooking_MultiServiceSummary(t *testing.T) {
	repo := &mockStore{}
	var stored *domain.Notification
	repo.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.Notification)
	}).Return(nil)
	pusher := &recordingPusher{}

	svc := NewService(repo, pusher)
	notificationID, err := svc.NotifyNewBooking(context.Background(), detailingBooking())
	require.NoError(t, err)
	require.NotEmpty(t, notificationID)

	require.NotNil(t, stored)
	assert.Equal(t, "prov-1", stored.UserID)
	assert.Equal(t, domain.NotifTypeNewBooking, stored.Type)
	assert.Contains(t, stored.Message, "3 services")
	assert.NotContains(t, stored.Message, "Wash")
	assert.Contains(t, stored.Message, "2025-10-31")
	assert.Contains(t, stored.Message, "2:30 PM")
	assert.Equal(t, "b1", stored.BookingID)
	assert.Equal(t, "3", stored.Data["service_count"])

	require.Len(t, pusher.deliveries, 1)
	assert.Equal(t, "prov-1", pusher.deliveries[0].userID)
	assert.Equal(t, "New Booking Request", pusher.deliveries[0].title)
}

func TestNotifyBookingConfirmed_SingleServiceNamed(t *testing.T) {
	repo := &mockStore{}
	var stored *domain.Notification
	repo.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.Notification)
	}).Return(nil)

	ev := detailingBooking()
	ev.Services = ev.Services[:1]

	svc := NewService(repo, nil)
	_, err := svc.NotifyBookingConfirmed(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, "cust-1", stored.UserID)
	assert.Contains(t, stored.Message, "Wash")
	assert.NotContains(t, stored.Message, "services")
}

func TestNotifyBookingCancelled_TargetsCustomer(t *testing.T) {
	repo := &mockStore{}
	var stored *domain.Notification
	repo.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.Notification)
	}).Return(nil)

	svc := NewService(repo, nil)
	_, err := svc.NotifyBookingCancelled(context.Background(), detailingBooking())
	require.NoError(t, err)

	assert.Equal(t, "cust-1", stored.UserID)
	assert.Equal(t, domain.NotifTypeBookingCancelled, stored.Type)
	assert.Contains(t, stored.Message, "cancelled")
}

func TestNotifyPaymentReceived_FormatsAmount(t *testing.T) {
	repo := &mockStore{}
	var stored *domain.Notification
	repo.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.Notification)
	}).Return(nil)

	svc := NewService(repo, nil)
	_, err := svc.NotifyPaymentReceived(context.Background(), detailingBooking())
	require.NoError(t, err)

	assert.Equal(t, "prov-1", stored.UserID)
	assert.Contains(t, stored.Message, "$130.00")
}

func TestNotify_StoreFailureSkipsPush(t *testing.T) {
	repo := &mockStore{}
	repo.On("Put", mock.Anything, mock.Anything).Return(errors.New("table missing"))
	pusher := &recordingPusher{}

	svc := NewService(repo, pusher)
	_, err := svc.NotifyNewBooking(context.Background(), detailingBooking())
	require.Error(t, err)
	assert.Empty(t, pusher.deliveries, "no push without a durable record")
}

func TestNotify_EmptyServiceList(t *testing.T) {
	repo := &mockStore{}
	var stored *domain.Notification
	repo.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.Notification)
	}).Return(nil)

	ev := detailingBooking()
	ev.Services = nil

	svc := NewService(repo, nil)
	_, err := svc.NotifyNewBooking(context.Background(), ev)
	require.NoError(t, err)
	assert.Contains(t, stored.Message, "your service")
}
