package availability

import (
	"context"

	"github.com/everbloom-studio/booking-api/internal/domain"
	"github.com/everbloom-studio/booking-api/internal/ports/out/blackoutrepo"
	"github.com/everbloom-studio/booking-api/internal/ports/out/bookingrepo"
	"github.com/everbloom-studio/booking-api/internal/ports/out/calendar"
)

// Resolver decides whether a calendar date can be booked by consulting three
// unavailability sources in fixed priority order with early return:
//
//  1. blackout dates (operator intent, highest priority)
//  2. existing bookings
//  3. external calendar busy signal (advisory, lowest priority)
//
// The chain is modeled as an ordered list of named checks so the priority
// invariant stays auditable in one place.
type Resolver struct {
	checks []namedCheck
}

type namedCheck struct {
	check  Check
	reason domain.UnavailabilityReason
	run    func(ctx context.Context, tenant domain.TenantID, date domain.CalendarDate) (bool, error)
}

func NewResolver(blackouts blackoutrepo.Repository, bookings bookingrepo.Repository, cal calendar.Provider) *Resolver {
	return &Resolver{
		checks: []namedCheck{
			{check: CheckBlackout, reason: domain.ReasonBlackout, run: blackouts.IsBlackout},
			{check: CheckBooking, reason: domain.ReasonBooked, run: bookings.HasBookingOn},
			{check: CheckCalendar, reason: domain.ReasonCalendarBusy, run: cal.IsBusy},
		},
	}
}

// CheckAvailability runs the checks in order and returns the first matching
// unavailability reason, or an available result when every check passes.
// Collaborator failures propagate as *CheckError naming the failing check;
// no partial result is synthesized on error and no retries are performed.
func (r *Resolver) CheckAvailability(ctx context.Context, tenant domain.TenantID, date domain.CalendarDate) (domain.AvailabilityResult, error) {
	for _, c := range r.checks {
		hit, err := c.run(ctx, tenant, date)
		if err != nil {
			return domain.AvailabilityResult{}, &CheckError{Check: c.check, Err: err}
		}
		if hit {
			reason := c.reason
			return domain.AvailabilityResult{Date: date, Available: false, Reason: &reason}, nil
		}
	}
	return domain.AvailabilityResult{Date: date, Available: true}, nil
}
