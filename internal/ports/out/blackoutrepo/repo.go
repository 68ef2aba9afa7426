package blackoutrepo

import (
	"context"

	"github.com/everbloom-studio/booking-api/internal/domain"
)

// Repository provides access to persisted blackout dates.
//
// All methods are tenant-scoped; isolation enforcement beyond the explicit
// tenant parameter belongs to the surrounding platform.
type Repository interface {
	// IsBlackout reports whether the tenant has a blackout on the given date.
	IsBlackout(ctx context.Context, tenant domain.TenantID, date domain.CalendarDate) (bool, error)

	// Create persists a new blackout. Returns ErrAlreadyExists when the tenant
	// already has a blackout on the same date.
	Create(ctx context.Context, b domain.Blackout) error

	// Delete removes a blackout by ID. Returns ErrNotFound when no such
	// blackout exists for the tenant.
	Delete(ctx context.Context, tenant domain.TenantID, id domain.BlackoutID) error

	// ListByTenant returns the tenant's blackouts ordered by date ascending
	// (ties broken by ID).
	ListByTenant(ctx context.Context, tenant domain.TenantID) ([]domain.Blackout, error)
}
