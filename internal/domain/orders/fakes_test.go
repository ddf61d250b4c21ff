package orders

import (
	"context"
	"errors"
	"sync"
	"time"

	"restopos/internal/core/apperror"
	"restopos/internal/core/id"
	"restopos/internal/core/types"
	"restopos/internal/domain/events"
	"restopos/internal/domain/tables"
)

// serialTx runs one transaction at a time, which is what the per-table
// advisory lock guarantees for a single table.
type serialTx struct{ mu sync.Mutex }

func (t *serialTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

type memOrders struct {
	mu     sync.Mutex
	orders map[id.ID]*Order
	seq    []id.ID
	items  map[id.ID][]OrderItem
	locks  int
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[id.ID]*Order{}, items: map[id.ID][]OrderItem{}}
}

func (r *memOrders) LockTable(context.Context, id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks++
	return nil
}

func (r *memOrders) FindOpenByTable(_ context.Context, tableID id.ID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, oid := range r.seq {
		o := r.orders[oid]
		if o.TableID == tableID && o.Status.IsOpen() {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memOrders) Create(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.TableID == o.TableID && existing.Status.IsOpen() {
			return apperror.NewConflict("table already has an open order")
		}
	}
	cp := *o
	r.orders[o.ID] = &cp
	r.seq = append(r.seq, o.ID)
	return nil
}

func (r *memOrders) UpdateCustomer(_ context.Context, orderID id.ID, customerID *id.ID, name, phone *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.orders[orderID]
	if customerID != nil {
		o.CustomerID = customerID
	}
	if name != nil {
		o.CustomerName = name
	}
	if phone != nil {
		o.CustomerPhone = phone
	}
	return nil
}

func (r *memOrders) GetByID(_ context.Context, orderID id.ID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	cp := *o
	return &cp, nil
}

func (r *memOrders) ListOpen(context.Context) ([]*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Order
	for _, oid := range r.seq {
		if o := r.orders[oid]; o.Status.IsOpen() {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memOrders) ListClosed(_ context.Context, from, to time.Time) ([]*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Order
	for i := len(r.seq) - 1; i >= 0; i-- {
		o := r.orders[r.seq[i]]
		if o.Status.IsOpen() || o.UpdatedAt.Before(from) || o.UpdatedAt.After(to) {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memOrders) UpdateStatus(_ context.Context, orderID id.ID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[orderID].Status = status
	r.orders[orderID].UpdatedAt = time.Now()
	return nil
}

func (r *memOrders) CountItems(_ context.Context, orderID id.ID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items[orderID]), nil
}

func (r *memOrders) UpsertItem(_ context.Context, orderID, menuItemID id.ID, quantity int, price types.Money) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.items[orderID]
	for i := range lines {
		if lines[i].MenuItemID == menuItemID {
			lines[i].Quantity += quantity
			return nil
		}
	}
	r.items[orderID] = append(lines, OrderItem{
		ID:            id.New(),
		OrderID:       orderID,
		MenuItemID:    menuItemID,
		Quantity:      quantity,
		PriceSnapshot: price,
		CreatedAt:     time.Now(),
	})
	return nil
}

func (r *memOrders) DecrementItem(_ context.Context, orderID, menuItemID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.items[orderID]
	for i := range lines {
		if lines[i].MenuItemID != menuItemID {
			continue
		}
		if lines[i].Quantity > 1 {
			lines[i].Quantity--
		} else {
			r.items[orderID] = append(lines[:i:i], lines[i+1:]...)
		}
		return true, nil
	}
	return false, nil
}

func (r *memOrders) DeleteItem(_ context.Context, orderID, menuItemID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.items[orderID]
	for i := range lines {
		if lines[i].MenuItemID == menuItemID {
			r.items[orderID] = append(lines[:i:i], lines[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memOrders) RecomputeTotal(_ context.Context, orderID id.ID) (types.Money, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := types.Zero()
	for _, it := range r.items[orderID] {
		total = total.Add(it.LineTotal())
	}
	r.orders[orderID].TotalAmount = total
	return total, nil
}

func (r *memOrders) ListItems(_ context.Context, orderIDs ...id.ID) (map[id.ID][]OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[id.ID][]OrderItem, len(orderIDs))
	for _, oid := range orderIDs {
		if lines := r.items[oid]; len(lines) > 0 {
			out[oid] = append([]OrderItem(nil), lines...)
		}
	}
	return out, nil
}

// setStatus bypasses the service, as the payment capture path would.
func (r *memOrders) setStatus(orderID id.ID, st Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[orderID].Status = st
	r.orders[orderID].UpdatedAt = time.Now()
}

func (r *memOrders) setDiscount(orderID id.ID, amount string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[orderID].DiscountAmount = types.MustMoney(amount)
}

func (r *memOrders) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

type memTables struct {
	mu     sync.Mutex
	byCode map[string]*tables.Table
}

func (m *memTables) GetByCode(_ context.Context, code string) (*tables.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byCode[code], nil
}

func (m *memTables) CreateIfAbsent(_ context.Context, t *tables.Table) (*tables.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byCode[t.TableCode]; ok {
		return existing, nil
	}
	m.byCode[t.TableCode] = t
	return t, nil
}

type memMenu struct {
	mu    sync.Mutex
	items map[id.ID]*MenuItem
}

func (m *memMenu) GetMenuItem(_ context.Context, menuItemID id.ID) (*MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[menuItemID]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (m *memMenu) setPrice(menuItemID id.ID, price string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[menuItemID].Price = types.MustMoney(price)
}

type memCustomers map[string]*Customer

func (m memCustomers) FindByPhone(_ context.Context, phone string) (*Customer, error) {
	return m[phone], nil
}

type recordedEvent struct {
	Name    string
	OrderID id.ID
	Total   string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := recordedEvent{Name: event}
	if body, ok := payload.(events.OrderPayload); ok {
		rec.OrderID = body.OrderID
		rec.Total = body.TotalAmount.String()
	}
	p.events = append(p.events, rec)
	return p.err
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Name
	}
	return out
}

type recordingInventory struct {
	mu    sync.Mutex
	calls [][]LineInput
	err   error
	panic bool
}

func (r *recordingInventory) DeductStockForOrder(_ context.Context, _ id.ID, items []LineInput) error {
	r.mu.Lock()
	r.calls = append(r.calls, items)
	r.mu.Unlock()
	if r.panic {
		panic("recipe table corrupted")
	}
	return r.err
}

var errStockService = errors.New("stock service unavailable")
