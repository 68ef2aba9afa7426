package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions configures optional router behavior.
type RouterOptions struct {
	// TenantMiddleware resolves the tenant for every request.
	// Defaults to NewTenantMiddleware("") (header required).
	TenantMiddleware func(http.Handler) http.Handler
}

// NewRouter constructs the API HTTP router with default options.
func NewRouter(s *Server) http.Handler {
	return NewRouterWithOptions(s, RouterOptions{})
}

// NewRouterWithOptions wires routes and middleware around the Server.
//
// This is intentionally a thin adapter: handlers decode/encode and delegate
// to the application services.
func NewRouterWithOptions(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	tenantMW := opts.TenantMiddleware
	if tenantMW == nil {
		tenantMW = NewTenantMiddleware("")
	}
	r.Use(tenantMW)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/availability", s.GetAvailability)
	r.Post("/checkout", s.PostCheckout)
	r.Get("/bookings/{bookingID}", s.GetBooking)

	r.Route("/admin/blackouts", func(r chi.Router) {
		r.Get("/", s.ListBlackouts)
		r.Post("/", s.CreateBlackout)
		r.Delete("/{blackoutID}", s.DeleteBlackout)
	})

	return r
}
