package keystore

import (
	"testing"

	"github.com/everbloom-studio/booking-api/internal/adapters/contracttest"
	"github.com/everbloom-studio/booking-api/internal/adapters/postgres/testutil"
	keystoreport "github.com/everbloom-studio/booking-api/internal/ports/out/keystore"
)

func TestContract_PostgresKeyStore(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunKeyStore(t, func(t *testing.T) (keystoreport.Store, func()) {
		t.Helper()
		return NewStore(pool), func() {
			testutil.Truncate(t, pool, "idempotency_keys")
		}
	})
}
