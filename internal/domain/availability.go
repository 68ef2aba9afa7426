package domain

// UnavailabilityReason explains why a date cannot be booked.
//
// When several sources mark the same date unavailable, the reported reason
// follows a fixed priority: Blackout > Booked > CalendarBusy. Blackouts are
// operator intent and must never be contradicted by a stray booking record;
// confirmed bookings are ground truth over a possibly-stale external calendar.
type UnavailabilityReason string

const (
	ReasonBlackout     UnavailabilityReason = "blackout"
	ReasonBooked       UnavailabilityReason = "booked"
	ReasonCalendarBusy UnavailabilityReason = "calendar_busy"
)

// AvailabilityResult is the outcome of an availability check for one date.
// Reason is non-nil exactly when Available is false.
type AvailabilityResult struct {
	Date      CalendarDate
	Available bool
	Reason    *UnavailabilityReason
}
