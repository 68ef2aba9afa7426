package httpapi

import (
	"net/http"
	"strings"

	"github.com/everbloom-studio/booking-api/internal/domain"
)

// TenantHeader carries the storefront tenant on every request. The
// surrounding platform (gateway/auth layer) is responsible for setting it
// trustworthily; this API only resolves and propagates it.
const TenantHeader = "X-Tenant-ID"

// NewTenantMiddleware resolves the tenant from TenantHeader into request
// context. defaultTenant, when non-empty, is a local/dev fallback for
// requests without the header. Requests with no resolvable tenant are
// rejected.
func NewTenantMiddleware(defaultTenant string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Health endpoint is tenant-free.
			if r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}

			tenant := strings.TrimSpace(r.Header.Get(TenantHeader))
			if tenant == "" {
				tenant = strings.TrimSpace(defaultTenant)
			}
			if tenant == "" {
				writeError(w, r, http.StatusBadRequest, "TENANT_REQUIRED", "missing "+TenantHeader+" header", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), domain.TenantID(tenant))))
		})
	}
}
