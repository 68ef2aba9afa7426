package bookingrepo

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/everbloom-studio/booking-api/internal/domain"
	"github.com/everbloom-studio/booking-api/internal/ports/out/bookingrepo"
)

// Repo is an in-memory implementation of bookingrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.BookingID]domain.Booking
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.BookingID]domain.Booking),
	}
}

func (r *Repo) HasBookingOn(ctx context.Context, tenant domain.TenantID, date domain.CalendarDate) (bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.byID {
		if b.TenantID == tenant && b.EventDate == date && b.BlocksDate() {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repo) Create(ctx context.Context, b domain.Booking) error {
	_ = ctx
	if b.ID == "" {
		return errors.New("empty booking id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[b.ID]; ok {
		return bookingrepo.ErrAlreadyExists
	}
	r.byID[b.ID] = b
	return nil
}

func (r *Repo) GetByID(ctx context.Context, tenant domain.TenantID, id domain.BookingID) (domain.Booking, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byID[id]
	if !ok || b.TenantID != tenant {
		return domain.Booking{}, bookingrepo.ErrNotFound
	}
	return b, nil
}

func (r *Repo) ListByEventDate(ctx context.Context, tenant domain.TenantID, date domain.CalendarDate) ([]domain.Booking, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Booking, 0)
	for _, b := range r.byID {
		if b.TenantID == tenant && b.EventDate == date {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return string(out[i].ID) < string(out[j].ID)
	})
	return out, nil
}
