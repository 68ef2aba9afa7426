package calendar

import (
	"context"
	"sync"

	"github.com/everbloom-studio/booking-api/internal/domain"
)

type busyKey struct {
	tenant domain.TenantID
	date   domain.CalendarDate
}

// Provider is an in-memory implementation of calendar.Provider backed by an
// explicit busy set. It serves tests and the memory storage backend, where no
// external calendar is wired.
type Provider struct {
	mu   sync.RWMutex
	busy map[busyKey]struct{}
}

func NewProvider() *Provider {
	return &Provider{
		busy: make(map[busyKey]struct{}),
	}
}

func (p *Provider) IsBusy(ctx context.Context, tenant domain.TenantID, date domain.CalendarDate) (bool, error) {
	_ = ctx
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.busy[busyKey{tenant: tenant, date: date}]
	return ok, nil
}

// SetBusy marks or clears a busy date for a tenant.
func (p *Provider) SetBusy(tenant domain.TenantID, date domain.CalendarDate, busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	k := busyKey{tenant: tenant, date: date}
	if busy {
		p.busy[k] = struct{}{}
	} else {
		delete(p.busy, k)
	}
}
