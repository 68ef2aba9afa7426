package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/everbloom-studio/booking-api/internal/app/availability"
	"github.com/everbloom-studio/booking-api/internal/app/checkout"
	"github.com/everbloom-studio/booking-api/internal/domain"
	"github.com/everbloom-studio/booking-api/internal/ports/out/blackoutrepo"
	"github.com/everbloom-studio/booking-api/internal/ports/out/bookingrepo"
	"github.com/everbloom-studio/booking-api/internal/ports/out/clock"
)

// Server is the HTTP adapter over the availability and checkout services and
// the admin blackout surface.
type Server struct {
	Availability *availability.Resolver
	Checkout     *checkout.Service
	Bookings     bookingrepo.Repository
	Blackouts    blackoutrepo.Repository
	Clock        clock.Clock

	newBlackoutID func() domain.BlackoutID
}

func NewServer(
	resolver *availability.Resolver,
	checkoutSvc *checkout.Service,
	bookings bookingrepo.Repository,
	blackouts blackoutrepo.Repository,
	clk clock.Clock,
) *Server {
	return &Server{
		Availability: resolver,
		Checkout:     checkoutSvc,
		Bookings:     bookings,
		Blackouts:    blackouts,
		Clock:        clk,
		newBlackoutID: func() domain.BlackoutID {
			return domain.BlackoutID(uuid.NewString())
		},
	}
}

// SetNewBlackoutIDForTest overrides blackout ID generation for deterministic
// tests. It should not be used in production code.
func (s *Server) SetNewBlackoutIDForTest(fn func() domain.BlackoutID) {
	if fn != nil {
		s.newBlackoutID = fn
	}
}

func (s *Server) GetAvailability(w http.ResponseWriter, r *http.Request) {
	tenant, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusBadRequest, "TENANT_REQUIRED", "missing tenant", nil)
		return
	}

	raw := r.URL.Query().Get("date")
	if raw == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid date", map[string]any{"date": "query parameter is required"})
		return
	}
	date, err := domain.ParseCalendarDate(raw)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid date", map[string]any{"date": "must be YYYY-MM-DD"})
		return
	}

	res, err := s.Availability.CheckAvailability(r.Context(), tenant, date)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponseFromDomain(res))
}

func (s *Server) PostCheckout(w http.ResponseWriter, r *http.Request) {
	tenant, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusBadRequest, "TENANT_REQUIRED", "missing tenant", nil)
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	if req.EventDate.Time.IsZero() {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid event date", map[string]any{"eventDate": "must be YYYY-MM-DD"})
		return
	}

	result, err := s.Checkout.Checkout(r.Context(), tenant, checkout.Input{
		PackageID:     domain.PackageID(req.PackageId),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		EventDate:     domain.DateOf(req.EventDate.Time),
		AmountCents:   req.AmountCents,
		Currency:      req.Currency,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		w.Header().Set("Idempotent-Replay", "true")
		status = http.StatusOK
	}
	writeJSON(w, status, bookingResponseFromDomain(result.Booking))
}

func (s *Server) GetBooking(w http.ResponseWriter, r *http.Request) {
	tenant, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusBadRequest, "TENANT_REQUIRED", "missing tenant", nil)
		return
	}

	id := domain.BookingID(chi.URLParam(r, "bookingID"))
	b, err := s.Bookings.GetByID(r.Context(), tenant, id)
	if err != nil {
		if errors.Is(err, bookingrepo.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "BOOKING_NOT_FOUND", "booking not found", nil)
			return
		}
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponseFromDomain(b))
}

func (s *Server) ListBlackouts(w http.ResponseWriter, r *http.Request) {
	tenant, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusBadRequest, "TENANT_REQUIRED", "missing tenant", nil)
		return
	}

	bs, err := s.Blackouts.ListByTenant(r.Context(), tenant)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := BlackoutListResponse{Blackouts: make([]BlackoutResponse, 0, len(bs))}
	for _, b := range bs {
		out.Blackouts = append(out.Blackouts, blackoutResponseFromDomain(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) CreateBlackout(w http.ResponseWriter, r *http.Request) {
	tenant, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusBadRequest, "TENANT_REQUIRED", "missing tenant", nil)
		return
	}

	var req CreateBlackoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	if req.Date.Time.IsZero() {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid date", map[string]any{"date": "must be YYYY-MM-DD"})
		return
	}

	b := domain.Blackout{
		ID:        s.newBlackoutID(),
		TenantID:  tenant,
		Date:      domain.DateOf(req.Date.Time),
		Reason:    req.Reason,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Blackouts.Create(r.Context(), b); err != nil {
		if errors.Is(err, blackoutrepo.ErrAlreadyExists) {
			writeError(w, r, http.StatusConflict, "BLACKOUT_EXISTS", "a blackout already exists for this date", map[string]any{"date": b.Date.String()})
			return
		}
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, blackoutResponseFromDomain(b))
}

func (s *Server) DeleteBlackout(w http.ResponseWriter, r *http.Request) {
	tenant, ok := TenantFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusBadRequest, "TENANT_REQUIRED", "missing tenant", nil)
		return
	}

	id := domain.BlackoutID(chi.URLParam(r, "blackoutID"))
	if err := s.Blackouts.Delete(r.Context(), tenant, id); err != nil {
		if errors.Is(err, blackoutrepo.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "BLACKOUT_NOT_FOUND", "blackout not found", nil)
			return
		}
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps app-layer errors to the wire envelope. Unrecognized
// errors become opaque 500s so internals never leak.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ce *availability.CheckError
	if errors.As(err, &ce) {
		writeError(w, r, http.StatusBadGateway, "AVAILABILITY_CHECK_FAILED", "an availability source could not be reached", map[string]any{"check": string(ce.Check)})
		return
	}
	var ae *checkout.Error
	if errors.As(err, &ae) {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
