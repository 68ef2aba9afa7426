package bookingrepo

import (
	"testing"

	"github.com/everbloom-studio/booking-api/internal/adapters/contracttest"
	"github.com/everbloom-studio/booking-api/internal/adapters/postgres/testutil"
	bookingrepoport "github.com/everbloom-studio/booking-api/internal/ports/out/bookingrepo"
)

func TestContract_PostgresBookingRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunBookingRepo(t, func(t *testing.T) (bookingrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), func() {
			testutil.Truncate(t, pool, "bookings")
		}
	})
}
