package domain

import "time"

// Notification types, one per booking-domain event.
const (
	NotifTypeNewBooking       = "new_booking"
	NotifTypeBookingConfirmed = "booking_confirmed"
	NotifTypeBookingCancelled = "booking_cancelled"
	NotifTypePaymentReceived  = "payment_received"
)

// Notification is one in-app record per delivered booking event. It is the
// record of truth for the event; device push is best-effort amplification.
type Notification struct {
	NotificationID string            `json:"id" dynamodbav:"notification_id"`
	UserID         string            `json:"user_id" dynamodbav:"user_id"`
	Type           string            `json:"type" dynamodbav:"type"`
	Title          string            `json:"title" dynamodbav:"title"`
	Message        string            `json:"message" dynamodbav:"message"`
	BookingID      string            `json:"booking_id,omitempty" dynamodbav:"booking_id"`
	Data           map[string]string `json:"data,omitempty" dynamodbav:"data"`
	Read           bool              `json:"read" dynamodbav:"read"`
	CreatedAt      time.Time         `json:"created" dynamodbav:"created_at"`
	ReadAt         *time.Time        `json:"read_at,omitempty" dynamodbav:"read_at"`
}
