package httpapi

import (
	"context"

	"github.com/everbloom-studio/booking-api/internal/domain"
)

type tenantKey struct{}

func WithTenant(ctx context.Context, tenant domain.TenantID) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenant)
}

func TenantFromContext(ctx context.Context) (domain.TenantID, bool) {
	v, ok := ctx.Value(tenantKey{}).(domain.TenantID)
	return v, ok && v != ""
}
