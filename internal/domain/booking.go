package domain

// BookedService is one line item of a booking.
type BookedService struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents,omitempty"`
}

// BookingEvent carries the slice of the booking domain the notifiers need.
// It is produced by the booking workflow, not persisted here.
type BookingEvent struct {
	BookingID      string          `json:"booking_id" validate:"required"`
	CustomerUserID string          `json:"customer_user_id"`
	ProviderUserID string          `json:"provider_user_id"`
	Date           string          `json:"date"` // YYYY-MM-DD
	Time           string          `json:"time"` // display time, e.g. "2:30 PM"
	Services       []BookedService `json:"services"`
	AmountCents    int64           `json:"amount_cents,omitempty"`
}
