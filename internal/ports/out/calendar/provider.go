package calendar

import (
	"context"

	"github.com/everbloom-studio/booking-api/internal/domain"
)

// Provider reports conflicts from an external scheduling calendar (for
// example the operator's personal calendar). A busy signal is advisory and
// may be stale; it ranks below blackouts and confirmed bookings.
//
// Implementations own their timeout/retry policy; the core performs neither.
type Provider interface {
	IsBusy(ctx context.Context, tenant domain.TenantID, date domain.CalendarDate) (bool, error)
}
