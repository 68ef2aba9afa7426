package calendar

import (
	"context"
	"testing"

	"github.com/everbloom-studio/booking-api/internal/domain"
)

func TestProvider_SetBusy(t *testing.T) {
	t.Parallel()

	p := NewProvider()
	d, err := domain.ParseCalendarDate("2025-07-01")
	if err != nil {
		t.Fatalf("ParseCalendarDate: %v", err)
	}

	if busy, err := p.IsBusy(context.Background(), "tenant_a", d); err != nil || busy {
		t.Fatalf("IsBusy=%v err=%v, want false", busy, err)
	}

	p.SetBusy("tenant_a", d, true)
	if busy, err := p.IsBusy(context.Background(), "tenant_a", d); err != nil || !busy {
		t.Fatalf("IsBusy=%v err=%v, want true", busy, err)
	}
	if busy, err := p.IsBusy(context.Background(), "tenant_b", d); err != nil || busy {
		t.Fatalf("other tenant IsBusy=%v err=%v, want false", busy, err)
	}

	p.SetBusy("tenant_a", d, false)
	if busy, err := p.IsBusy(context.Background(), "tenant_a", d); err != nil || busy {
		t.Fatalf("after clear IsBusy=%v err=%v, want false", busy, err)
	}
}
