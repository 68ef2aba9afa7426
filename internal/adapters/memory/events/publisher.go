package events

import (
	"context"
	"sync"

	"github.com/everbloom-studio/booking-api/internal/ports/out/events"
)

// Publisher is an in-memory implementation of events.Publisher that records
// published events. It serves tests and deployments without a broker.
type Publisher struct {
	mu        sync.Mutex
	published []events.BookingConfirmed
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) PublishBookingConfirmed(_ context.Context, ev events.BookingConfirmed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, ev)
	return nil
}

// Published returns a copy of the events published so far.
func (p *Publisher) Published() []events.BookingConfirmed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.BookingConfirmed(nil), p.published...)
}
