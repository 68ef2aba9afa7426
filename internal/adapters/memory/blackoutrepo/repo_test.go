package blackoutrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/everbloom-studio/booking-api/internal/domain"
	"github.com/everbloom-studio/booking-api/internal/ports/out/blackoutrepo"
)

func TestRepo_Create_EmptyID(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	err := r.Create(context.Background(), domain.Blackout{
		TenantID:  "tenant_123",
		Date:      domain.CalendarDate{Year: 2025, Month: time.July, Day: 1},
		Reason:    "Holiday",
		CreatedAt: time.Unix(100, 0).UTC(),
	})
	if err == nil {
		t.Fatalf("Create with empty ID succeeded, want error")
	}
	if errors.Is(err, blackoutrepo.ErrAlreadyExists) {
		t.Fatalf("err=%v, want a plain validation error, not ErrAlreadyExists", err)
	}
}
