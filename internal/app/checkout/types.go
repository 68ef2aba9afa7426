package checkout

import (
	"github.com/everbloom-studio/booking-api/internal/domain"
)

// Input is one checkout submission. EventDate and CustomerEmail identify the
// logical attempt together with PackageID and the tenant.
type Input struct {
	PackageID     domain.PackageID
	CustomerName  string
	CustomerEmail string
	EventDate     domain.CalendarDate

	AmountCents int64
	Currency    string
}

// Result is the checkout outcome returned to the HTTP layer. Replayed is true
// when the response was served from the idempotency store instead of a fresh
// booking.
type Result struct {
	Booking  domain.Booking
	Replayed bool
}
