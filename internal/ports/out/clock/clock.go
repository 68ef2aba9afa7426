package clock

import "time"

// Clock is the application's source of time. Idempotency key expiry and
// checkout bucketing depend on it, so tests substitute a manual clock.
type Clock interface {
	Now() time.Time
}
