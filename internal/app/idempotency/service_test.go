package idempotency_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	memkeystore "github.com/everbloom-studio/booking-api/internal/adapters/memory/keystore"
	"github.com/everbloom-studio/booking-api/internal/app/idempotency"
	"github.com/everbloom-studio/booking-api/internal/domain"
)

// manualClock is a settable clock for deterministic expiry tests.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(at time.Time) *manualClock {
	return &manualClock{now: at}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func mustDate(t *testing.T, s string) domain.CalendarDate {
	t.Helper()
	d, err := domain.ParseCalendarDate(s)
	if err != nil {
		t.Fatalf("ParseCalendarDate(%q): %v", s, err)
	}
	return d
}

func newService(clk *manualClock, cfg idempotency.Config) *idempotency.Service {
	return idempotency.NewService(memkeystore.NewStore(), clk, cfg)
}

var keyPattern = regexp.MustCompile(`^checkout_[0-9a-f]{32}$`)

func TestService_GenerateKey_Deterministic(t *testing.T) {
	t.Parallel()

	svc := newService(newManualClock(time.Unix(0, 0)), idempotency.Config{})

	k1 := svc.GenerateKey("checkout", "a", "b")
	k2 := svc.GenerateKey("checkout", "a", "b")
	if k1 != k2 {
		t.Fatalf("identical inputs produced %q and %q", k1, k2)
	}
	if !keyPattern.MatchString(k1) {
		t.Fatalf("key %q does not match <prefix>_<32 hex>", k1)
	}
}

func TestService_GenerateKey_AnyArgumentChangesKey(t *testing.T) {
	t.Parallel()

	svc := newService(newManualClock(time.Unix(0, 0)), idempotency.Config{})

	base := svc.GenerateKey("p", "a", "b")
	variants := []string{
		svc.GenerateKey("q", "a", "b"),
		svc.GenerateKey("p", "x", "b"),
		svc.GenerateKey("p", "a", "x"),
		svc.GenerateKey("p", "a", "b", "c"),
	}
	seen := map[string]bool{base: true}
	for i, v := range variants {
		if v == base {
			t.Fatalf("variant %d equals base key %q", i, base)
		}
		if i != 0 && seen[v] {
			// The prefix variant keeps the same digest; every other variant
			// must have a distinct digest too.
			t.Fatalf("variant %d collides with an earlier key: %q", i, v)
		}
		seen[v] = true
	}
}

func TestService_GenerateCheckoutKey_Bucketing(t *testing.T) {
	t.Parallel()

	svc := newService(newManualClock(time.Unix(0, 0)), idempotency.Config{})
	d := mustDate(t, "2025-07-01")

	// 1700000000000 and +5s land in the same 10s bucket; +15s does not.
	k0 := svc.GenerateCheckoutKey("tenant_123", "a@b.com", "pkg_basic", d, 1700000000000)
	k5 := svc.GenerateCheckoutKey("tenant_123", "a@b.com", "pkg_basic", d, 1700000005000)
	k15 := svc.GenerateCheckoutKey("tenant_123", "a@b.com", "pkg_basic", d, 1700000015000)

	if k0 != k5 {
		t.Fatalf("5s apart: %q != %q", k0, k5)
	}
	if k0 == k15 {
		t.Fatalf("15s apart collided: %q", k0)
	}
	if !keyPattern.MatchString(k0) {
		t.Fatalf("key %q does not match checkout_<32 hex>", k0)
	}
}

func TestService_GenerateCheckoutKey_NormalizesEmail(t *testing.T) {
	t.Parallel()

	svc := newService(newManualClock(time.Unix(0, 0)), idempotency.Config{})
	d := mustDate(t, "2025-07-01")

	k1 := svc.GenerateCheckoutKey("tenant_123", "A@B.com ", "pkg_basic", d, 1700000000000)
	k2 := svc.GenerateCheckoutKey("tenant_123", "a@b.com", "pkg_basic", d, 1700000000000)
	if k1 != k2 {
		t.Fatalf("email case/whitespace changed the key: %q vs %q", k1, k2)
	}
}

func TestService_GenerateCheckoutKey_WindowConfigurable(t *testing.T) {
	t.Parallel()

	svc := newService(newManualClock(time.Unix(0, 0)), idempotency.Config{CheckoutKeyWindow: 30 * time.Second})
	d := mustDate(t, "2025-07-01")

	k0 := svc.GenerateCheckoutKey("tenant_123", "a@b.com", "pkg_basic", d, 1700000000000)
	k15 := svc.GenerateCheckoutKey("tenant_123", "a@b.com", "pkg_basic", d, 1700000015000)
	if k0 != k15 {
		t.Fatalf("15s apart with a 30s window: %q != %q", k0, k15)
	}
}

func TestService_CheckAndStore_SingleWinnerUnderConcurrency(t *testing.T) {
	t.Parallel()

	svc := newService(newManualClock(time.Unix(1000, 0).UTC()), idempotency.Config{})

	const callers = 16
	var wg sync.WaitGroup
	owned := make([]bool, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			owned[i], errs[i] = svc.CheckAndStore(context.Background(), "checkout_abc")
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if owned[i] {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("winners=%d, want exactly 1", winners)
	}
}

func TestService_ResponseRoundTrip(t *testing.T) {
	t.Parallel()

	clk := newManualClock(time.Unix(1000, 0).UTC())
	svc := newService(clk, idempotency.Config{})

	owned, err := svc.CheckAndStore(context.Background(), "k1")
	if err != nil || !owned {
		t.Fatalf("CheckAndStore owned=%v err=%v", owned, err)
	}

	// Before the owner attaches a response, duplicates see nothing to replay.
	resp, err := svc.GetStoredResponse(context.Background(), "k1")
	if err != nil {
		t.Fatalf("GetStoredResponse: %v", err)
	}
	if resp != nil {
		t.Fatalf("resp=%q, want nil before UpdateResponse", resp)
	}

	if err := svc.UpdateResponse(context.Background(), "k1", []byte(`{"bookingId":"b1"}`)); err != nil {
		t.Fatalf("UpdateResponse: %v", err)
	}

	resp, err = svc.GetStoredResponse(context.Background(), "k1")
	if err != nil {
		t.Fatalf("GetStoredResponse: %v", err)
	}
	if string(resp) != `{"bookingId":"b1"}` {
		t.Fatalf("resp=%q", resp)
	}
}

func TestService_GetStoredResponse_ExpiryDeletesRecord(t *testing.T) {
	t.Parallel()

	clk := newManualClock(time.Unix(1000, 0).UTC())
	store := memkeystore.NewStore()
	svc := idempotency.NewService(store, clk, idempotency.Config{KeyTTL: time.Hour})

	if owned, err := svc.CheckAndStore(context.Background(), "k-exp"); err != nil || !owned {
		t.Fatalf("CheckAndStore owned=%v err=%v", owned, err)
	}
	if err := svc.UpdateResponse(context.Background(), "k-exp", []byte("resp")); err != nil {
		t.Fatalf("UpdateResponse: %v", err)
	}

	clk.Advance(2 * time.Hour)

	resp, err := svc.GetStoredResponse(context.Background(), "k-exp")
	if err != nil {
		t.Fatalf("GetStoredResponse: %v", err)
	}
	if resp != nil {
		t.Fatalf("resp=%q, want nil after expiry", resp)
	}

	// The record is gone, not just masked.
	if _, ok, err := store.Find(context.Background(), "k-exp"); err != nil || ok {
		t.Fatalf("Find after expiry ok=%v err=%v, want absent", ok, err)
	}
}

func TestService_GetStoredResponse_ExactExpiryBoundary(t *testing.T) {
	t.Parallel()

	clk := newManualClock(time.Unix(1000, 0).UTC())
	svc := newService(clk, idempotency.Config{KeyTTL: time.Hour})

	if owned, err := svc.CheckAndStore(context.Background(), "k-edge"); err != nil || !owned {
		t.Fatalf("CheckAndStore owned=%v err=%v", owned, err)
	}
	if err := svc.UpdateResponse(context.Background(), "k-edge", []byte("resp")); err != nil {
		t.Fatalf("UpdateResponse: %v", err)
	}

	// At exactly ExpiresAt the record is reclaimable by CheckAndStore, so it
	// must not be servable either.
	clk.Advance(time.Hour)

	resp, err := svc.GetStoredResponse(context.Background(), "k-edge")
	if err != nil {
		t.Fatalf("GetStoredResponse: %v", err)
	}
	if resp != nil {
		t.Fatalf("resp=%q, want nil at the expiry instant", resp)
	}
	if owned, err := svc.CheckAndStore(context.Background(), "k-edge"); err != nil || !owned {
		t.Fatalf("CheckAndStore at expiry owned=%v err=%v, want true", owned, err)
	}
}

func TestService_CheckAndStore_ReclaimsExpiredKey(t *testing.T) {
	t.Parallel()

	clk := newManualClock(time.Unix(1000, 0).UTC())
	svc := newService(clk, idempotency.Config{KeyTTL: time.Hour})

	if owned, err := svc.CheckAndStore(context.Background(), "k-re"); err != nil || !owned {
		t.Fatalf("first CheckAndStore owned=%v err=%v", owned, err)
	}
	if owned, err := svc.CheckAndStore(context.Background(), "k-re"); err != nil || owned {
		t.Fatalf("duplicate CheckAndStore owned=%v err=%v, want false", owned, err)
	}

	clk.Advance(2 * time.Hour)

	if owned, err := svc.CheckAndStore(context.Background(), "k-re"); err != nil || !owned {
		t.Fatalf("post-expiry CheckAndStore owned=%v err=%v, want true", owned, err)
	}
}

func TestService_UpdateResponse_MissingKey(t *testing.T) {
	t.Parallel()

	svc := newService(newManualClock(time.Unix(1000, 0).UTC()), idempotency.Config{})

	err := svc.UpdateResponse(context.Background(), "never-claimed", []byte("x"))
	if !errors.Is(err, idempotency.ErrKeyNotFound) {
		t.Fatalf("err=%v, want ErrKeyNotFound", err)
	}
}
