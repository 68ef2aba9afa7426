package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	memblackoutrepo "github.com/everbloom-studio/booking-api/internal/adapters/memory/blackoutrepo"
	membookingrepo "github.com/everbloom-studio/booking-api/internal/adapters/memory/bookingrepo"
	memcalendar "github.com/everbloom-studio/booking-api/internal/adapters/memory/calendar"
	memevents "github.com/everbloom-studio/booking-api/internal/adapters/memory/events"
	memkeystore "github.com/everbloom-studio/booking-api/internal/adapters/memory/keystore"
	"github.com/everbloom-studio/booking-api/internal/app/availability"
	"github.com/everbloom-studio/booking-api/internal/app/checkout"
	"github.com/everbloom-studio/booking-api/internal/app/idempotency"
	"github.com/everbloom-studio/booking-api/internal/domain"
)

const tenant = domain.TenantID("tenant_123")

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(at time.Time) *manualClock { return &manualClock{now: at} }

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

type fixture struct {
	blackouts *memblackoutrepo.Repo
	bookings  *membookingrepo.Repo
	cal       *memcalendar.Provider
	store     *memkeystore.Store
	publisher *memevents.Publisher
	clk       *manualClock
	idem      *idempotency.Service
	svc       *checkout.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		blackouts: memblackoutrepo.NewRepo(),
		bookings:  membookingrepo.NewRepo(),
		cal:       memcalendar.NewProvider(),
		store:     memkeystore.NewStore(),
		publisher: memevents.NewPublisher(),
		clk:       newManualClock(time.Unix(1700000000, 0).UTC()),
	}
	resolver := availability.NewResolver(f.blackouts, f.bookings, f.cal)
	f.idem = idempotency.NewService(f.store, f.clk, idempotency.Config{})
	f.svc = checkout.NewService(f.bookings, resolver, f.idem, f.publisher, f.clk)

	n := 0
	f.svc.SetNewBookingIDForTest(func() domain.BookingID {
		n++
		return domain.BookingID(fmt.Sprintf("bk-%d", n))
	})
	return f
}

func validInput(t *testing.T) checkout.Input {
	t.Helper()
	return checkout.Input{
		PackageID:     "pkg_basic",
		CustomerName:  "  Ada   Lovelace ",
		CustomerEmail: "A@B.com",
		EventDate:     mustDate(t, "2025-07-01"),
		AmountCents:   250000,
		Currency:      "USD",
	}
}

func TestService_Checkout_CreatesBookingAndPublishes(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res, err := f.svc.Checkout(context.Background(), tenant, validInput(t))
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if res.Replayed {
		t.Fatalf("Replayed=true on first checkout")
	}
	if res.Booking.ID != "bk-1" || res.Booking.Status != domain.BookingStatusConfirmed {
		t.Fatalf("booking=%+v", res.Booking)
	}
	if res.Booking.CustomerName != "Ada Lovelace" || res.Booking.CustomerEmail != "a@b.com" {
		t.Fatalf("normalization: name=%q email=%q", res.Booking.CustomerName, res.Booking.CustomerEmail)
	}

	stored, err := f.bookings.GetByID(context.Background(), tenant, "bk-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.EventDate.String() != "2025-07-01" {
		t.Fatalf("EventDate=%s", stored.EventDate)
	}

	evs := f.publisher.Published()
	if len(evs) != 1 || evs[0].BookingID != "bk-1" || evs[0].EventType != "BookingConfirmed" {
		t.Fatalf("events=%+v", evs)
	}
	if evs[0].EventDate != "2025-07-01" || evs[0].TenantID != string(tenant) {
		t.Fatalf("event payload=%+v", evs[0])
	}
}

func TestService_Checkout_DuplicateWithinWindowReplays(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	first, err := f.svc.Checkout(context.Background(), tenant, validInput(t))
	if err != nil {
		t.Fatalf("first Checkout: %v", err)
	}

	f.clk.Advance(5 * time.Second) // same 10s bucket
	second, err := f.svc.Checkout(context.Background(), tenant, validInput(t))
	if err != nil {
		t.Fatalf("second Checkout: %v", err)
	}
	if !second.Replayed {
		t.Fatalf("Replayed=false, want true")
	}
	if second.Booking.ID != first.Booking.ID {
		t.Fatalf("replayed booking %s, want %s", second.Booking.ID, first.Booking.ID)
	}
	if evs := f.publisher.Published(); len(evs) != 1 {
		t.Fatalf("published %d events, want 1 (replay must not re-publish)", len(evs))
	}
}

func TestService_Checkout_RetryOutsideWindowSeesDateBooked(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if _, err := f.svc.Checkout(context.Background(), tenant, validInput(t)); err != nil {
		t.Fatalf("first Checkout: %v", err)
	}

	f.clk.Advance(15 * time.Second) // new bucket, new logical attempt
	_, err := f.svc.Checkout(context.Background(), tenant, validInput(t))
	var ae *checkout.Error
	if !errors.As(err, &ae) || ae.Status != 409 || ae.Code != "DATE_UNAVAILABLE" {
		t.Fatalf("err=%v, want 409 DATE_UNAVAILABLE", err)
	}
	if ae.Details["reason"] != string(domain.ReasonBooked) {
		t.Fatalf("details=%v, want reason=booked", ae.Details)
	}
}

func TestService_Checkout_InProgressDuplicateRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	in := validInput(t)

	// Claim the key the way the owning request would, without finishing.
	key := f.idem.GenerateCheckoutKey(tenant, in.CustomerEmail, in.PackageID, in.EventDate, f.clk.Now().UnixMilli())
	if owned, err := f.idem.CheckAndStore(context.Background(), key); err != nil || !owned {
		t.Fatalf("CheckAndStore owned=%v err=%v", owned, err)
	}

	_, err := f.svc.Checkout(context.Background(), tenant, in)
	var ae *checkout.Error
	if !errors.As(err, &ae) || ae.Status != 409 || ae.Code != "CHECKOUT_IN_PROGRESS" {
		t.Fatalf("err=%v, want 409 CHECKOUT_IN_PROGRESS", err)
	}
	if n, _ := f.bookings.ListByEventDate(context.Background(), tenant, in.EventDate); len(n) != 0 {
		t.Fatalf("bookings=%d, want 0", len(n))
	}
}

func TestService_Checkout_BlackoutDateRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	in := validInput(t)
	if err := f.blackouts.Create(context.Background(), domain.Blackout{
		ID:        "bl-1",
		TenantID:  tenant,
		Date:      in.EventDate,
		Reason:    "Holiday",
		CreatedAt: f.clk.Now(),
	}); err != nil {
		t.Fatalf("create blackout: %v", err)
	}

	_, err := f.svc.Checkout(context.Background(), tenant, in)
	var ae *checkout.Error
	if !errors.As(err, &ae) || ae.Code != "DATE_UNAVAILABLE" {
		t.Fatalf("err=%v, want DATE_UNAVAILABLE", err)
	}
	if ae.Details["reason"] != string(domain.ReasonBlackout) {
		t.Fatalf("details=%v, want reason=blackout", ae.Details)
	}
	if evs := f.publisher.Published(); len(evs) != 0 {
		t.Fatalf("published %d events, want 0", len(evs))
	}
}

func TestService_Checkout_ValidationErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Checkout(context.Background(), tenant, checkout.Input{})
	var ae *checkout.Error
	if !errors.As(err, &ae) || ae.Status != 422 || ae.Code != "VALIDATION_ERROR" {
		t.Fatalf("err=%v, want 422 VALIDATION_ERROR", err)
	}
	for _, field := range []string{"packageId", "customerEmail", "eventDate"} {
		if _, ok := ae.Details[field]; !ok {
			t.Fatalf("details=%v, missing %s", ae.Details, field)
		}
	}
}

func TestService_Checkout_ConcurrentDuplicatesCreateOneBooking(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	in := validInput(t)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]checkout.Result, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Checkout(context.Background(), tenant, in)
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			// Losers racing ahead of the owner's UpdateResponse see
			// CHECKOUT_IN_PROGRESS; that is an accepted outcome.
			var ae *checkout.Error
			if !errors.As(errs[i], &ae) || ae.Code != "CHECKOUT_IN_PROGRESS" {
				t.Fatalf("caller %d: %v", i, errs[i])
			}
			continue
		}
		if !results[i].Replayed {
			fresh++
		}
	}
	if fresh != 1 {
		t.Fatalf("fresh checkouts=%d, want exactly 1", fresh)
	}
	bs, err := f.bookings.ListByEventDate(context.Background(), tenant, in.EventDate)
	if err != nil {
		t.Fatalf("ListByEventDate: %v", err)
	}
	if len(bs) != 1 {
		t.Fatalf("bookings=%d, want 1", len(bs))
	}
}
