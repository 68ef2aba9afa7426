package bookingrepo

import (
	"context"

	"github.com/everbloom-studio/booking-api/internal/domain"
)

// Repository provides access to persisted bookings.
type Repository interface {
	// HasBookingOn reports whether the tenant has a non-canceled booking whose
	// event date equals the given date.
	HasBookingOn(ctx context.Context, tenant domain.TenantID, date domain.CalendarDate) (bool, error)

	// Create persists a new booking. Returns ErrAlreadyExists on ID collision.
	Create(ctx context.Context, b domain.Booking) error

	GetByID(ctx context.Context, tenant domain.TenantID, id domain.BookingID) (domain.Booking, error)

	// ListByEventDate returns the tenant's bookings (any status) for the given
	// event date, ordered by creation time ascending (ties broken by ID).
	ListByEventDate(ctx context.Context, tenant domain.TenantID, date domain.CalendarDate) ([]domain.Booking, error)
}
