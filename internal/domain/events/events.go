// Package events defines order lifecycle notifications and the publisher contract.
//
// Delivery is at-most-once: publishers make a single attempt and keep no backlog.
package events

import (
	"context"
	"errors"
	"time"

	"restopos/internal/core/id"
	"restopos/internal/core/types"
)

// Event names emitted to real-time subscribers.
const (
	OrderNew           = "order:new"
	OrderUpdated       = "order:updated"
	OrderStatusChanged = "order:status"
)

// ItemPayload is a single order line inside an OrderPayload.
type ItemPayload struct {
	MenuItemID    id.ID       `json:"menuItemId"`
	Name          string      `json:"name,omitempty"`
	Department    string      `json:"department,omitempty"`
	Quantity      int         `json:"quantity"`
	PriceSnapshot types.Money `json:"priceSnapshot"`
}

// OrderPayload is the body of every order event.
type OrderPayload struct {
	OrderID     id.ID         `json:"orderId"`
	TableCode   string        `json:"tableCode"`
	TotalAmount types.Money   `json:"totalAmount"`
	Items       []ItemPayload `json:"items"`
	Status      string        `json:"status"`
	OccurredAt  time.Time     `json:"occurredAt"`
}

// Message is the envelope written to transports that carry several event kinds.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Publisher emits a named event. Implementations must not block for long and
// must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event string, payload any) error

// Publish implements Publisher.
func (f PublisherFunc) Publish(ctx context.Context, event string, payload any) error {
	return f(ctx, event, payload)
}

// Fanout publishes every event to all of its publishers. A failing publisher
// does not stop the others; their errors are joined.
type Fanout []Publisher

// Publish implements Publisher.
func (f Fanout) Publish(ctx context.Context, event string, payload any) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard is a Publisher that drops everything.
var Discard Publisher = PublisherFunc(func(context.Context, string, any) error { return nil })
