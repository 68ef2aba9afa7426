package contracttest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/everbloom-studio/booking-api/internal/domain"
	blackoutrepoport "github.com/everbloom-studio/booking-api/internal/ports/out/blackoutrepo"
	bookingrepoport "github.com/everbloom-studio/booking-api/internal/ports/out/bookingrepo"
	keystoreport "github.com/everbloom-studio/booking-api/internal/ports/out/keystore"
)

type CleanupFunc = func()

type BlackoutRepoFactory func(t *testing.T) (blackoutrepoport.Repository, CleanupFunc)
type BookingRepoFactory func(t *testing.T) (bookingrepoport.Repository, CleanupFunc)
type KeyStoreFactory func(t *testing.T) (keystoreport.Store, CleanupFunc)

func mustDate(t *testing.T, s string) domain.CalendarDate {
	t.Helper()
	d, err := domain.ParseCalendarDate(s)
	if err != nil {
		t.Fatalf("ParseCalendarDate(%q): %v", s, err)
	}
	return d
}

// RunKeyStore verifies the keystore.Store contract, in particular that
// InsertIfAbsent admits exactly one caller per live key.
func RunKeyStore(t *testing.T, newStore KeyStoreFactory) {
	t.Helper()
	ctx := context.Background()

	t.Run("insert then find", func(t *testing.T) {
		store, cleanup := newStore(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		now := time.Unix(1000, 0).UTC()
		created, err := store.InsertIfAbsent(ctx, "k-find", now.Add(time.Hour), now)
		if err != nil {
			t.Fatalf("InsertIfAbsent: %v", err)
		}
		if !created {
			t.Fatalf("InsertIfAbsent created=false, want true")
		}

		rec, ok, err := store.Find(ctx, "k-find")
		if err != nil {
			t.Fatalf("Find: %v", err)
		}
		if !ok {
			t.Fatalf("Find ok=false, want true")
		}
		if rec.Response != nil {
			t.Fatalf("fresh record Response=%q, want nil", rec.Response)
		}
		if !rec.ExpiresAt.Equal(now.Add(time.Hour)) {
			t.Fatalf("ExpiresAt=%v, want %v", rec.ExpiresAt, now.Add(time.Hour))
		}
	})

	t.Run("duplicate insert loses", func(t *testing.T) {
		store, cleanup := newStore(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		now := time.Unix(2000, 0).UTC()
		if created, err := store.InsertIfAbsent(ctx, "k-dup", now.Add(time.Hour), now); err != nil || !created {
			t.Fatalf("first insert created=%v err=%v", created, err)
		}
		created, err := store.InsertIfAbsent(ctx, "k-dup", now.Add(2*time.Hour), now.Add(time.Second))
		if err != nil {
			t.Fatalf("second insert: %v", err)
		}
		if created {
			t.Fatalf("second insert created=true, want false")
		}
	})

	t.Run("concurrent inserts admit exactly one", func(t *testing.T) {
		store, cleanup := newStore(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		now := time.Unix(3000, 0).UTC()
		const callers = 16
		var wg sync.WaitGroup
		results := make([]bool, callers)
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = store.InsertIfAbsent(ctx, "k-race", now.Add(time.Hour), now)
			}(i)
		}
		wg.Wait()

		winners := 0
		for i := 0; i < callers; i++ {
			if errs[i] != nil {
				t.Fatalf("caller %d: %v", i, errs[i])
			}
			if results[i] {
				winners++
			}
		}
		if winners != 1 {
			t.Fatalf("winners=%d, want exactly 1", winners)
		}
	})

	t.Run("expired record is reclaimed by insert", func(t *testing.T) {
		store, cleanup := newStore(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		now := time.Unix(4000, 0).UTC()
		if created, err := store.InsertIfAbsent(ctx, "k-exp", now.Add(time.Minute), now); err != nil || !created {
			t.Fatalf("first insert created=%v err=%v", created, err)
		}
		later := now.Add(2 * time.Minute)
		created, err := store.InsertIfAbsent(ctx, "k-exp", later.Add(time.Minute), later)
		if err != nil {
			t.Fatalf("reclaim insert: %v", err)
		}
		if !created {
			t.Fatalf("reclaim insert created=false, want true")
		}
	})

	t.Run("update attaches response", func(t *testing.T) {
		store, cleanup := newStore(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		now := time.Unix(5000, 0).UTC()
		if created, err := store.InsertIfAbsent(ctx, "k-upd", now.Add(time.Hour), now); err != nil || !created {
			t.Fatalf("insert created=%v err=%v", created, err)
		}
		if err := store.Update(ctx, "k-upd", []byte(`{"ok":true}`)); err != nil {
			t.Fatalf("Update: %v", err)
		}
		rec, ok, err := store.Find(ctx, "k-upd")
		if err != nil || !ok {
			t.Fatalf("Find ok=%v err=%v", ok, err)
		}
		if string(rec.Response) != `{"ok":true}` {
			t.Fatalf("Response=%q", rec.Response)
		}
	})

	t.Run("update missing key", func(t *testing.T) {
		store, cleanup := newStore(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		err := store.Update(ctx, "k-missing", []byte("x"))
		if !errors.Is(err, keystoreport.ErrNotFound) {
			t.Fatalf("Update err=%v, want ErrNotFound", err)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store, cleanup := newStore(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		now := time.Unix(6000, 0).UTC()
		if created, err := store.InsertIfAbsent(ctx, "k-del", now.Add(time.Hour), now); err != nil || !created {
			t.Fatalf("insert created=%v err=%v", created, err)
		}
		if err := store.Delete(ctx, "k-del"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, ok, err := store.Find(ctx, "k-del"); err != nil || ok {
			t.Fatalf("Find after delete ok=%v err=%v", ok, err)
		}
		if err := store.Delete(ctx, "k-del"); err != nil {
			t.Fatalf("Delete (second): %v", err)
		}
	})
}

// RunBlackoutRepo verifies the blackoutrepo.Repository contract.
func RunBlackoutRepo(t *testing.T, newRepo BlackoutRepoFactory) {
	t.Helper()
	ctx := context.Background()

	t.Run("create and check", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		d := mustDate(t, "2025-07-01")
		if err := repo.Create(ctx, domain.Blackout{
			ID:        "bl-1",
			TenantID:  "tenant_a",
			Date:      d,
			Reason:    "Holiday",
			CreatedAt: time.Unix(100, 0).UTC(),
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}

		hit, err := repo.IsBlackout(ctx, "tenant_a", d)
		if err != nil {
			t.Fatalf("IsBlackout: %v", err)
		}
		if !hit {
			t.Fatalf("IsBlackout=false, want true")
		}

		// Other tenants and other dates are unaffected.
		if hit, err := repo.IsBlackout(ctx, "tenant_b", d); err != nil || hit {
			t.Fatalf("other tenant hit=%v err=%v", hit, err)
		}
		if hit, err := repo.IsBlackout(ctx, "tenant_a", mustDate(t, "2025-07-02")); err != nil || hit {
			t.Fatalf("other date hit=%v err=%v", hit, err)
		}
	})

	t.Run("duplicate tenant+date rejected", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		d := mustDate(t, "2025-08-01")
		if err := repo.Create(ctx, domain.Blackout{ID: "bl-2", TenantID: "tenant_a", Date: d, Reason: "Maintenance", CreatedAt: time.Unix(100, 0).UTC()}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		err := repo.Create(ctx, domain.Blackout{ID: "bl-3", TenantID: "tenant_a", Date: d, Reason: "Again", CreatedAt: time.Unix(200, 0).UTC()})
		if !errors.Is(err, blackoutrepoport.ErrAlreadyExists) {
			t.Fatalf("duplicate Create err=%v, want ErrAlreadyExists", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		d := mustDate(t, "2025-09-01")
		if err := repo.Create(ctx, domain.Blackout{ID: "bl-4", TenantID: "tenant_a", Date: d, Reason: "Closed", CreatedAt: time.Unix(100, 0).UTC()}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := repo.Delete(ctx, "tenant_a", "bl-4"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if hit, err := repo.IsBlackout(ctx, "tenant_a", d); err != nil || hit {
			t.Fatalf("after delete hit=%v err=%v", hit, err)
		}
		if err := repo.Delete(ctx, "tenant_a", "bl-4"); !errors.Is(err, blackoutrepoport.ErrNotFound) {
			t.Fatalf("second Delete err=%v, want ErrNotFound", err)
		}
		// Wrong tenant cannot delete.
		if err := repo.Create(ctx, domain.Blackout{ID: "bl-5", TenantID: "tenant_a", Date: d, Reason: "Closed", CreatedAt: time.Unix(100, 0).UTC()}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := repo.Delete(ctx, "tenant_b", "bl-5"); !errors.Is(err, blackoutrepoport.ErrNotFound) {
			t.Fatalf("cross-tenant Delete err=%v, want ErrNotFound", err)
		}
	})

	t.Run("list ordered by date", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		now := time.Unix(100, 0).UTC()
		for _, b := range []domain.Blackout{
			{ID: "bl-b", TenantID: "tenant_a", Date: mustDate(t, "2025-10-02"), Reason: "B", CreatedAt: now},
			{ID: "bl-a", TenantID: "tenant_a", Date: mustDate(t, "2025-10-01"), Reason: "A", CreatedAt: now},
			{ID: "bl-x", TenantID: "tenant_b", Date: mustDate(t, "2025-10-01"), Reason: "X", CreatedAt: now},
		} {
			if err := repo.Create(ctx, b); err != nil {
				t.Fatalf("Create %s: %v", b.ID, err)
			}
		}

		got, err := repo.ListByTenant(ctx, "tenant_a")
		if err != nil {
			t.Fatalf("ListByTenant: %v", err)
		}
		if len(got) != 2 || got[0].ID != "bl-a" || got[1].ID != "bl-b" {
			t.Fatalf("ListByTenant=%+v", got)
		}
	})
}

// RunBookingRepo verifies the bookingrepo.Repository contract.
func RunBookingRepo(t *testing.T, newRepo BookingRepoFactory) {
	t.Helper()
	ctx := context.Background()

	booking := func(id domain.BookingID, tenant domain.TenantID, date domain.CalendarDate, status domain.BookingStatus, createdAt time.Time) domain.Booking {
		return domain.Booking{
			ID:            id,
			TenantID:      tenant,
			PackageID:     "pkg_basic",
			CustomerName:  "A Customer",
			CustomerEmail: "a@b.com",
			EventDate:     date,
			Status:        status,
			AmountCents:   150000,
			Currency:      "USD",
			CreatedAt:     createdAt,
			UpdatedAt:     createdAt,
		}
	}

	t.Run("create get roundtrip", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		d := mustDate(t, "2025-07-01")
		now := time.Unix(100, 0).UTC()
		b := booking("bk-1", "tenant_a", d, domain.BookingStatusConfirmed, now)
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("Create: %v", err)
		}

		got, err := repo.GetByID(ctx, "tenant_a", "bk-1")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.PackageID != b.PackageID || got.CustomerEmail != b.CustomerEmail || got.EventDate != d || got.Status != b.Status || got.AmountCents != b.AmountCents {
			t.Fatalf("GetByID=%+v, want %+v", got, b)
		}

		if _, err := repo.GetByID(ctx, "tenant_b", "bk-1"); !errors.Is(err, bookingrepoport.ErrNotFound) {
			t.Fatalf("cross-tenant GetByID err=%v, want ErrNotFound", err)
		}
		if err := repo.Create(ctx, b); !errors.Is(err, bookingrepoport.ErrAlreadyExists) {
			t.Fatalf("duplicate Create err=%v, want ErrAlreadyExists", err)
		}
	})

	t.Run("has booking on date", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		d := mustDate(t, "2025-07-10")
		now := time.Unix(100, 0).UTC()
		if err := repo.Create(ctx, booking("bk-2", "tenant_a", d, domain.BookingStatusConfirmed, now)); err != nil {
			t.Fatalf("Create: %v", err)
		}

		if hit, err := repo.HasBookingOn(ctx, "tenant_a", d); err != nil || !hit {
			t.Fatalf("HasBookingOn hit=%v err=%v, want true", hit, err)
		}
		if hit, err := repo.HasBookingOn(ctx, "tenant_b", d); err != nil || hit {
			t.Fatalf("other tenant hit=%v err=%v, want false", hit, err)
		}
		if hit, err := repo.HasBookingOn(ctx, "tenant_a", mustDate(t, "2025-07-11")); err != nil || hit {
			t.Fatalf("other date hit=%v err=%v, want false", hit, err)
		}
	})

	t.Run("canceled bookings do not block", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		d := mustDate(t, "2025-07-20")
		now := time.Unix(100, 0).UTC()
		if err := repo.Create(ctx, booking("bk-3", "tenant_a", d, domain.BookingStatusCanceled, now)); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if hit, err := repo.HasBookingOn(ctx, "tenant_a", d); err != nil || hit {
			t.Fatalf("canceled hit=%v err=%v, want false", hit, err)
		}
	})

	t.Run("list by event date ordered by creation", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		d := mustDate(t, "2025-07-30")
		for _, b := range []domain.Booking{
			booking("bk-later", "tenant_a", d, domain.BookingStatusConfirmed, time.Unix(300, 0).UTC()),
			booking("bk-earlier", "tenant_a", d, domain.BookingStatusCanceled, time.Unix(200, 0).UTC()),
			booking("bk-other", "tenant_a", mustDate(t, "2025-07-31"), domain.BookingStatusConfirmed, time.Unix(100, 0).UTC()),
		} {
			if err := repo.Create(ctx, b); err != nil {
				t.Fatalf("Create %s: %v", b.ID, err)
			}
		}

		got, err := repo.ListByEventDate(ctx, "tenant_a", d)
		if err != nil {
			t.Fatalf("ListByEventDate: %v", err)
		}
		if len(got) != 2 || got[0].ID != "bk-earlier" || got[1].ID != "bk-later" {
			t.Fatalf("ListByEventDate=%+v", got)
		}
	})
}
