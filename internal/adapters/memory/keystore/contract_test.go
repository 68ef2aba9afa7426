package keystore

import (
	"testing"

	"github.com/everbloom-studio/booking-api/internal/adapters/contracttest"
	keystoreport "github.com/everbloom-studio/booking-api/internal/ports/out/keystore"
)

func TestContract_KeyStore(t *testing.T) {
	contracttest.RunKeyStore(t, func(t *testing.T) (keystoreport.Store, func()) {
		t.Helper()
		return NewStore(), nil
	})
}
