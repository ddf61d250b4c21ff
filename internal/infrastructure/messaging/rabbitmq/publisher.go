// Package rabbitmq publishes order events to a RabbitMQ fanout exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"restopos/internal/domain/events"
)

// DefaultExchange is used when no exchange name is configured.
const DefaultExchange = "orders.events"

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends every event as a JSON events.Message.
// The routing key is the event name. Messages are transient and unconfirmed.
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	now      func() time.Time
	mu       sync.Mutex
}

var _ events.Publisher = (*Publisher)(nil)

// Dial connects to the broker and declares a durable fanout exchange.
func Dial(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq declare exchange %q: %w", exchange, err)
	}

	return &Publisher{conn: conn, ch: ch, exchange: exchange, now: time.Now}, nil
}

// Publish implements events.Publisher.
func (p *Publisher) Publish(ctx context.Context, event string, payload any) error {
	msg, err := p.message(event, payload)
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, event, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", event, err)
	}
	return nil
}

func (p *Publisher) message(event string, payload any) (amqp.Publishing, error) {
	body, err := json.Marshal(events.Message{Event: event, Data: payload})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal %s event: %w", event, err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Transient,
		ContentType:  "application/json",
		Type:         event,
		Timestamp:    p.now().UTC(),
		Body:         body,
	}, nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var chErr error
	if p.ch != nil {
		chErr = p.ch.Close()
	}
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Close(); err != nil {
			return err
		}
	}
	return chErr
}
