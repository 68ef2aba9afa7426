package domain

import "time"

// Blackout is an operator-designated day on which bookings are categorically
// disallowed, independent of booking or external-calendar state.
type Blackout struct {
	ID       BlackoutID
	TenantID TenantID

	Date   CalendarDate
	Reason string

	CreatedAt time.Time
}
