package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"restopos/internal/core/id"
	"restopos/internal/domain/events"
	"restopos/pkg/logger"
)

const (
	defaultEffectTimeout = 10 * time.Second
	notifyQueueSize      = 1024
)

// Dispatcher runs post-commit side effects. Stock deduction runs on its own
// goroutine; notifications go through a single FIFO worker so subscribers see
// events in the order their transactions committed. Failures are logged and
// never reach the caller.
type Dispatcher struct {
	inventory InventoryDeductor
	publisher events.Publisher
	timeout   time.Duration
	now       func() time.Time

	queue chan *Ticket
	wg    sync.WaitGroup
}

// Ticket is a reserved position in the notification queue. It is taken while
// the table lock is held and resolved after the transaction finishes, so
// queue order matches commit order for a table.
type Ticket struct {
	ready   chan struct{}
	once    sync.Once
	ctx     context.Context
	event   string
	orderID id.ID
	payload any
}

// NewDispatcher creates a Dispatcher and starts its notification worker.
// Either collaborator may be nil.
func NewDispatcher(inventory InventoryDeductor, publisher events.Publisher, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultEffectTimeout
	}
	if publisher == nil {
		publisher = events.Discard
	}
	d := &Dispatcher{
		inventory: inventory,
		publisher: publisher,
		timeout:   timeout,
		now:       time.Now,
		queue:     make(chan *Ticket, notifyQueueSize),
	}
	go d.notifyLoop()
	return d
}

// Reserve takes the next slot in the notification queue. Every ticket must be
// passed to OrderChanged or Cancel, otherwise later notifications stall.
func (d *Dispatcher) Reserve() *Ticket {
	if d == nil {
		return nil
	}
	t := &Ticket{ready: make(chan struct{})}
	d.wg.Add(1)
	d.queue <- t
	return t
}

// Cancel releases a ticket without publishing anything.
func (d *Dispatcher) Cancel(t *Ticket) {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.ready) })
}

// OrderChanged deducts stock for added lines and publishes event with the
// order's current state in t's queue position. The payload is captured
// before returning.
func (d *Dispatcher) OrderChanged(ctx context.Context, t *Ticket, event string, o *Order, added []LineInput) {
	if d == nil {
		return
	}
	orderID := o.ID

	if len(added) > 0 && d.inventory != nil {
		lines := append([]LineInput(nil), added...)
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.exec(ctx, "inventory", orderID, func(ctx context.Context) error {
				return d.inventory.DeductStockForOrder(ctx, orderID, lines)
			})
		}()
	}

	if t == nil {
		t = d.Reserve()
	}
	t.once.Do(func() {
		t.ctx = ctx
		t.event = event
		t.orderID = orderID
		t.payload = o.Payload(d.now())
		close(t.ready)
	})
}

// Wait blocks until every dispatched effect has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

func (d *Dispatcher) notifyLoop() {
	for t := range d.queue {
		<-t.ready
		if t.event != "" {
			d.exec(t.ctx, t.event, t.orderID, func(ctx context.Context) error {
				return d.publisher.Publish(ctx, t.event, t.payload)
			})
		}
		d.wg.Done()
	}
}

func (d *Dispatcher) exec(parent context.Context, name string, orderID id.ID, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "side effect panicked",
				"event", name,
				"order_id", orderID,
				"panic", fmt.Sprint(r))
		}
	}()

	if err := fn(ctx); err != nil {
		logger.Warn(ctx, "side effect failed",
			"event", name,
			"order_id", orderID,
			"error", err)
	}
}
