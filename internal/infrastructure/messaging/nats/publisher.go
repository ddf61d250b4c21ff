// Package nats publishes order events on NATS subjects.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"restopos/internal/domain/events"
)

// DefaultPrefix is used when no subject prefix is configured.
const DefaultPrefix = "restopos"

type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// Publisher publishes each event on "<prefix>.<event>", where the colon in
// the event name becomes a dot: order:new is sent on restopos.order.new.
type Publisher struct {
	nc     conn
	prefix string
}

var _ events.Publisher = (*Publisher)(nil)

// Connect opens a connection to url.
func Connect(url, prefix string) (*Publisher, error) {
	nc, err := nats.Connect(url, nats.Name("restopos"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return newPublisher(nc, prefix), nil
}

func newPublisher(nc conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Publisher{nc: nc, prefix: strings.TrimSuffix(prefix, ".")}
}

// Subject returns the subject an event is published on.
func (p *Publisher) Subject(event string) string {
	return p.prefix + "." + strings.ReplaceAll(event, ":", ".")
}

// Publish implements events.Publisher. The body is the JSON payload.
func (p *Publisher) Publish(ctx context.Context, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}
	subject := p.Subject(event)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	return p.nc.Drain()
}
