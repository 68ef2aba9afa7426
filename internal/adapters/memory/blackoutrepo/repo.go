package blackoutrepo

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/everbloom-studio/booking-api/internal/domain"
	"github.com/everbloom-studio/booking-api/internal/ports/out/blackoutrepo"
)

// Repo is an in-memory implementation of blackoutrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.BlackoutID]domain.Blackout
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.BlackoutID]domain.Blackout),
	}
}

func (r *Repo) IsBlackout(ctx context.Context, tenant domain.TenantID, date domain.CalendarDate) (bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.byID {
		if b.TenantID == tenant && b.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repo) Create(ctx context.Context, b domain.Blackout) error {
	_ = ctx
	if b.ID == "" {
		return errors.New("empty blackout id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[b.ID]; ok {
		return blackoutrepo.ErrAlreadyExists
	}
	for _, existing := range r.byID {
		if existing.TenantID == b.TenantID && existing.Date == b.Date {
			return blackoutrepo.ErrAlreadyExists
		}
	}
	r.byID[b.ID] = b
	return nil
}

func (r *Repo) Delete(ctx context.Context, tenant domain.TenantID, id domain.BlackoutID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok || b.TenantID != tenant {
		return blackoutrepo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Repo) ListByTenant(ctx context.Context, tenant domain.TenantID) ([]domain.Blackout, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Blackout, 0)
	for _, b := range r.byID {
		if b.TenantID == tenant {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Time().Before(out[j].Date.Time())
		}
		return string(out[i].ID) < string(out[j].ID)
	})
	return out, nil
}
