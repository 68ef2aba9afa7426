package httpapi

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/everbloom-studio/booking-api/internal/domain"
)

type AvailabilityResponse struct {
	Date      openapi_types.Date `json:"date"`
	Available bool               `json:"available"`
	Reason    *string            `json:"reason,omitempty"`
}

type CheckoutRequest struct {
	PackageId     string             `json:"packageId"`
	CustomerName  string             `json:"customerName,omitempty"`
	CustomerEmail string             `json:"customerEmail"`
	EventDate     openapi_types.Date `json:"eventDate"`
	AmountCents   int64              `json:"amountCents,omitempty"`
	Currency      string             `json:"currency,omitempty"`
}

type BookingResponse struct {
	Id            string             `json:"id"`
	PackageId     string             `json:"packageId"`
	CustomerName  string             `json:"customerName,omitempty"`
	CustomerEmail string             `json:"customerEmail"`
	EventDate     openapi_types.Date `json:"eventDate"`
	Status        string             `json:"status"`
	AmountCents   int64              `json:"amountCents"`
	Currency      string             `json:"currency,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
}

type CreateBlackoutRequest struct {
	Date   openapi_types.Date `json:"date"`
	Reason string             `json:"reason,omitempty"`
}

type BlackoutResponse struct {
	Id        string             `json:"id"`
	Date      openapi_types.Date `json:"date"`
	Reason    string             `json:"reason,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

type BlackoutListResponse struct {
	Blackouts []BlackoutResponse `json:"blackouts"`
}

func wireDate(d domain.CalendarDate) openapi_types.Date {
	return openapi_types.Date{Time: d.Time()}
}

func availabilityResponseFromDomain(res domain.AvailabilityResult) AvailabilityResponse {
	out := AvailabilityResponse{
		Date:      wireDate(res.Date),
		Available: res.Available,
	}
	if res.Reason != nil {
		reason := string(*res.Reason)
		out.Reason = &reason
	}
	return out
}

func bookingResponseFromDomain(b domain.Booking) BookingResponse {
	return BookingResponse{
		Id:            string(b.ID),
		PackageId:     string(b.PackageID),
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		EventDate:     wireDate(b.EventDate),
		Status:        string(b.Status),
		AmountCents:   b.AmountCents,
		Currency:      b.Currency,
		CreatedAt:     b.CreatedAt,
	}
}

func blackoutResponseFromDomain(b domain.Blackout) BlackoutResponse {
	return BlackoutResponse{
		Id:        string(b.ID),
		Date:      wireDate(b.Date),
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt,
	}
}
