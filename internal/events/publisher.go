// Package events publishes domain events to an AMQP topic exchange.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Routing keys
const (
	BookingCreated        = "booking.created"
	CancellationRequested = "cancellation.requested"
	CancellationApproved  = "cancellation.approved"
	CancellationRejected  = "cancellation.rejected"
	PaymentRecorded       = "payment.recorded"
	CheckoutCreated       = "checkout.created"
)

// Envelope wraps every published payload
type Envelope struct {
	Event      string `json:"event"`
	Version    int    `json:"version"`
	OccurredAt string `json:"occurred_at"` // RFC3339
	Data       any    `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, key string, data any) error
}

// Noop drops events, used when no broker is configured
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   *zap.Logger
}

func NewAMQPPublisher(url, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange, logger: logger}, nil
}

// NewEnvelope wraps data for the given routing key
func NewEnvelope(key string, data any, at time.Time) Envelope {
	return Envelope{
		Event:      key,
		Version:    1,
		OccurredAt: at.UTC().Format(time.RFC3339),
		Data:       data,
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, key string, data any) error {
	b, err := json.Marshal(NewEnvelope(key, data, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         b,
	})
	if err != nil {
		p.logger.Error("Failed to publish event", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
