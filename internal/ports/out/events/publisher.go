package events

import (
	"context"
	"time"

	"github.com/everbloom-studio/booking-api/internal/domain"
)

// BookingConfirmed is emitted after a checkout creates a booking. Admin
// dashboards and notification workers consume it.
type BookingConfirmed struct {
	EventType string `json:"eventType"`

	BookingID     string `json:"bookingId"`
	TenantID      string `json:"tenantId"`
	PackageID     string `json:"packageId"`
	CustomerEmail string `json:"customerEmail"`
	EventDate     string `json:"eventDate"`
	AmountCents   int64  `json:"amountCents"`
	Currency      string `json:"currency"`

	Timestamp time.Time `json:"timestamp"`
}

// NewBookingConfirmed builds the event payload for a booking.
func NewBookingConfirmed(b domain.Booking, at time.Time) BookingConfirmed {
	return BookingConfirmed{
		EventType:     "BookingConfirmed",
		BookingID:     string(b.ID),
		TenantID:      string(b.TenantID),
		PackageID:     string(b.PackageID),
		CustomerEmail: b.CustomerEmail,
		EventDate:     b.EventDate.String(),
		AmountCents:   b.AmountCents,
		Currency:      b.Currency,
		Timestamp:     at.UTC(),
	}
}

// Publisher delivers booking events to interested consumers.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, ev BookingConfirmed) error
}
