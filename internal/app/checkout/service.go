package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/everbloom-studio/booking-api/internal/app/availability"
	"github.com/everbloom-studio/booking-api/internal/app/idempotency"
	"github.com/everbloom-studio/booking-api/internal/domain"
	"github.com/everbloom-studio/booking-api/internal/ports/out/bookingrepo"
	"github.com/everbloom-studio/booking-api/internal/ports/out/clock"
	"github.com/everbloom-studio/booking-api/internal/ports/out/events"
)

// Service runs the checkout path: it guards each logical attempt with an
// idempotency key, re-checks availability, creates the booking, caches the
// response for duplicate callers, and announces the booking.
type Service struct {
	bookings  bookingrepo.Repository
	resolver  *availability.Resolver
	idem      *idempotency.Service
	publisher events.Publisher
	clk       clock.Clock

	newBookingID func() domain.BookingID
}

func NewService(
	bookings bookingrepo.Repository,
	resolver *availability.Resolver,
	idem *idempotency.Service,
	publisher events.Publisher,
	clk clock.Clock,
) *Service {
	return &Service{
		bookings:  bookings,
		resolver:  resolver,
		idem:      idem,
		publisher: publisher,
		clk:       clk,
		newBookingID: func() domain.BookingID {
			return domain.BookingID(uuid.NewString())
		},
	}
}

// SetNewBookingIDForTest overrides booking ID generation for deterministic
// tests. It should not be used in production code.
func (s *Service) SetNewBookingIDForTest(fn func() domain.BookingID) {
	if fn != nil {
		s.newBookingID = fn
	}
}

// Checkout processes one submission for the tenant.
//
// Duplicate submissions within the checkout key window collapse onto one
// attempt: the first caller to claim the key executes the booking, every
// other caller either replays the cached response or, if the owner is still
// running, is rejected with CHECKOUT_IN_PROGRESS.
func (s *Service) Checkout(ctx context.Context, tenant domain.TenantID, in Input) (Result, error) {
	if err := validateInput(in); err != nil {
		return Result{}, err
	}

	now := s.clk.Now()
	key := s.idem.GenerateCheckoutKey(tenant, in.CustomerEmail, in.PackageID, in.EventDate, now.UnixMilli())

	owned, err := s.idem.CheckAndStore(ctx, key)
	if err != nil {
		return Result{}, err
	}
	if !owned {
		stored, err := s.idem.GetStoredResponse(ctx, key)
		if err != nil {
			return Result{}, err
		}
		if stored == nil {
			// The owning request has not finished (or was abandoned; the key
			// expires on the TTL horizon).
			return Result{}, &Error{
				Status:  409,
				Code:    "CHECKOUT_IN_PROGRESS",
				Message: "an identical checkout is already being processed",
			}
		}
		var b domain.Booking
		if err := unmarshalBooking(stored, &b); err != nil {
			return Result{}, err
		}
		return Result{Booking: b, Replayed: true}, nil
	}

	res, err := s.resolver.CheckAvailability(ctx, tenant, in.EventDate)
	if err != nil {
		return Result{}, err
	}
	if !res.Available {
		// Rejections are not cached; the claimed key simply ages out.
		return Result{}, &Error{
			Status:  409,
			Code:    "DATE_UNAVAILABLE",
			Message: "the requested date is not available",
			Details: map[string]any{"date": in.EventDate.String(), "reason": string(*res.Reason)},
		}
	}

	b := domain.Booking{
		ID:            s.newBookingID(),
		TenantID:      tenant,
		PackageID:     in.PackageID,
		CustomerName:  domain.NormalizeHumanName(in.CustomerName),
		CustomerEmail: domain.NormalizeEmail(in.CustomerEmail),
		EventDate:     in.EventDate,
		Status:        domain.BookingStatusConfirmed,
		AmountCents:   in.AmountCents,
		Currency:      in.Currency,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return Result{}, err
	}

	// Cache the response before publishing: if the publish fails, a client
	// retry within the window replays the booking instead of creating a
	// second one.
	payload, err := marshalBooking(b)
	if err != nil {
		return Result{}, err
	}
	if err := s.idem.UpdateResponse(ctx, key, payload); err != nil {
		return Result{}, err
	}

	if err := s.publisher.PublishBookingConfirmed(ctx, events.NewBookingConfirmed(b, now)); err != nil {
		return Result{}, fmt.Errorf("publish booking confirmed: %w", err)
	}

	return Result{Booking: b}, nil
}

func validateInput(in Input) error {
	details := map[string]any{}
	if in.PackageID == "" {
		details["packageId"] = "must be non-empty"
	}
	if domain.NormalizeEmail(in.CustomerEmail) == "" {
		details["customerEmail"] = "must be non-empty"
	}
	if in.EventDate.IsZero() {
		details["eventDate"] = "must be a valid date"
	}
	if in.AmountCents < 0 {
		details["amountCents"] = "must be >= 0"
	}
	if len(details) == 0 {
		return nil
	}
	return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid checkout input", Details: details}
}

// storedBooking is the serialized form cached in the idempotency store.
type storedBooking struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenantId"`
	PackageID     string    `json:"packageId"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	EventDate     string    `json:"eventDate"`
	Status        string    `json:"status"`
	AmountCents   int64     `json:"amountCents"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func marshalBooking(b domain.Booking) ([]byte, error) {
	return json.Marshal(storedBooking{
		ID:            string(b.ID),
		TenantID:      string(b.TenantID),
		PackageID:     string(b.PackageID),
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		EventDate:     b.EventDate.String(),
		Status:        string(b.Status),
		AmountCents:   b.AmountCents,
		Currency:      b.Currency,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	})
}

func unmarshalBooking(data []byte, out *domain.Booking) error {
	var sb storedBooking
	if err := json.Unmarshal(data, &sb); err != nil {
		return fmt.Errorf("decode cached checkout response: %w", err)
	}
	date, err := domain.ParseCalendarDate(sb.EventDate)
	if err != nil {
		return fmt.Errorf("decode cached checkout response: %w", err)
	}
	*out = domain.Booking{
		ID:            domain.BookingID(sb.ID),
		TenantID:      domain.TenantID(sb.TenantID),
		PackageID:     domain.PackageID(sb.PackageID),
		CustomerName:  sb.CustomerName,
		CustomerEmail: sb.CustomerEmail,
		EventDate:     date,
		Status:        domain.BookingStatus(sb.Status),
		AmountCents:   sb.AmountCents,
		Currency:      sb.Currency,
		CreatedAt:     sb.CreatedAt,
		UpdatedAt:     sb.UpdatedAt,
	}
	return nil
}
