package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"restopos/internal/core/id"
	"restopos/internal/core/types"
	"restopos/internal/domain/events"
)

func TestDispatcher_PublishesInReservationOrder(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	d := NewDispatcher(nil, pub, 0)

	orderID := id.New()
	first := d.Reserve()
	second := d.Reserve()

	// The later commit finishes its post-commit work first.
	d.OrderChanged(ctx, second, events.OrderUpdated, &Order{ID: orderID, TotalAmount: types.MustMoney("450")}, nil)
	d.OrderChanged(ctx, first, events.OrderNew, &Order{ID: orderID, TotalAmount: types.MustMoney("200")}, nil)
	d.Wait()

	assert.Equal(t, []string{events.OrderNew, events.OrderUpdated}, pub.names())
	assert.Equal(t, "200", pub.events[0].Total)
	assert.Equal(t, "450", pub.events[1].Total)
}

func TestDispatcher_CancelledTicketDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	d := NewDispatcher(nil, pub, 0)

	dropped := d.Reserve()
	kept := d.Reserve()
	d.OrderChanged(ctx, kept, events.OrderStatusChanged, &Order{ID: id.New()}, nil)
	d.Cancel(dropped)
	d.Cancel(kept)
	d.Wait()

	assert.Equal(t, []string{events.OrderStatusChanged}, pub.names())
}

func TestDispatcher_NilIsNoop(t *testing.T) {
	var d *Dispatcher
	ticket := d.Reserve()
	assert.Nil(t, ticket)
	d.Cancel(ticket)
	d.OrderChanged(context.Background(), ticket, events.OrderNew, &Order{ID: id.New()}, nil)
	d.Wait()
}
