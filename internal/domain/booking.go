package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCanceled  BookingStatus = "CANCELED"
)

// Booking is the domain representation of a confirmed or pending reservation
// of a package for a calendar date. Canceled bookings do not block the date.
type Booking struct {
	ID       BookingID
	TenantID TenantID

	PackageID     PackageID
	CustomerName  string
	CustomerEmail string
	EventDate     CalendarDate

	Status BookingStatus

	AmountCents int64
	Currency    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlocksDate reports whether the booking makes its event date unavailable.
func (b Booking) BlocksDate() bool {
	return b.Status != BookingStatusCanceled
}
