package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/brnno-tech/brnno-api/internal/domain"
)

// Booking-event notifiers: each translates one booking-domain event into an
// in-app record plus a best-effort push. The record write is authoritative;
// push failure never rolls it back.

// NotifyNewBooking tells the provider a customer has requested a booking.
func (s *Service) NotifyNewBooking(ctx context.Context, ev domain.BookingEvent) (string, error) {
	return s.notify(ctx, ev, ev.ProviderUserID, domain.NotifTypeNewBooking,
		"New Booking Request",
		fmt.Sprintf("You have a new booking for %s on %s at %s.", serviceSummary(ev.Services), ev.Date, ev.Time),
	)
}

// NotifyBookingConfirmed tells the customer the provider accepted.
func (s *Service) NotifyBookingConfirmed(ctx context.Context, ev domain.BookingEvent) (string, error) {
	return s.notify(ctx, ev, ev.CustomerUserID, domain.NotifTypeBookingConfirmed,
		"Booking Confirmed",
		fmt.Sprintf("Your booking for %s on %s at %s has been confirmed.", serviceSummary(ev.Services), ev.Date, ev.Time),
	)
}

// NotifyBookingCancelled tells the customer the booking was cancelled.
func (s *Service) NotifyBookingCancelled(ctx context.Context, ev domain.BookingEvent) (string, error) {
	return s.notify(ctx, ev, ev.CustomerUserID, domain.NotifTypeBookingCancelled,
		"Booking Cancelled",
		fmt.Sprintf("Your booking for %s on %s at %s has been cancelled.", serviceSummary(ev.Services), ev.Date, ev.Time),
	)
}

// NotifyPaymentReceived tells the provider the customer's payment cleared.
func (s *Service) NotifyPaymentReceived(ctx context.Context, ev domain.BookingEvent) (string, error) {
	return s.notify(ctx, ev, ev.ProviderUserID, domain.NotifTypePaymentReceived,
		"Payment Received",
		fmt.Sprintf("Payment of %s received for the booking on %s.", formatCents(ev.AmountCents), ev.Date),
	)
}

func (s *Service) notify(ctx context.Context, ev domain.BookingEvent, userID, notifType, title, message string) (string, error) {
	n := &domain.Notification{
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		BookingID: ev.BookingID,
		Data: map[string]string{
			"booking_id":    ev.BookingID,
			"type":          notifType,
			"service_count": strconv.Itoa(len(ev.Services)),
		},
	}
	notificationID, err := s.Create(ctx, n)
	if err != nil {
		return "", err
	}
	if s.push != nil {
		s.push.Deliver(ctx, userID, title, message, n.Data)
	}
	return notificationID, nil
}

// serviceSummary keeps messages bounded regardless of booking size: a single
// service is named, multiple services become a count.
func serviceSummary(services []domain.BookedService) string {
	switch len(services) {
	case 0:
		return "your service"
	case 1:
		return services[0].Name
	default:
		return fmt.Sprintf("%d services", len(services))
	}
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
