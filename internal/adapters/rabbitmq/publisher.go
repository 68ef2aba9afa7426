package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/everbloom-studio/booking-api/internal/ports/out/events"
)

const BookingConfirmedQueue = "booking.confirmed"

// Publisher delivers booking events to RabbitMQ.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher opens a channel on conn and declares the queues it publishes
// to, so a publish never fails due to missing infra.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", BookingConfirmedQueue, err)
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishBookingConfirmed(ctx context.Context, ev events.BookingConfirmed) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal BookingConfirmed: %w", err)
	}
	return p.publishJSON(ctx, BookingConfirmedQueue, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",         // default exchange
		routingKey, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
