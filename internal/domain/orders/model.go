// Package orders implements the open-order aggregate: find-or-create of the
// single open order per table, idempotent line merging with authoritative
// total recomputation, the status machine and post-commit side effects.
package orders

import (
	"fmt"
	"strings"
	"time"

	"restopos/internal/core/apperror"
	"restopos/internal/core/id"
	"restopos/internal/core/types"
	"restopos/internal/domain/events"
	"restopos/internal/domain/tables"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusServed    Status = "served"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// OpenStatuses are the states in which an order accepts new items.
var OpenStatuses = []Status{StatusPending, StatusPreparing, StatusServed}

// IsOpen reports whether the order can still be merged into.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusPreparing || s == StatusServed
}

// ParseStatus validates a client supplied status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusPreparing, StatusServed, StatusPaid, StatusCancelled:
		return st, nil
	default:
		return "", apperror.NewInvalidInput("status", "unknown order status").WithDetail("value", s)
	}
}

// transitions lists the moves the admin status endpoint may make.
// paid is reached only through payment capture.
var transitions = map[Status][]Status{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusServed, StatusCancelled},
	StatusServed:    {StatusCancelled},
}

// CanTransition reports whether from -> to is a legal admin transition.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is the aggregate root. TotalAmount is always derived from Items.
type Order struct {
	ID        id.ID  `db:"id" json:"id"`
	TableID   id.ID  `db:"table_id" json:"tableId"`
	TableCode string `db:"table_code" json:"tableCode"`
	Status    Status `db:"status" json:"status"`

	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	CustomerID    *id.ID  `db:"customer_id" json:"customerId,omitempty"`
	CustomerName  *string `db:"customer_name" json:"customerName,omitempty"`
	CustomerPhone *string `db:"customer_phone" json:"customerPhone,omitempty"`

	PaymentMethod  *string     `db:"payment_method" json:"paymentMethod,omitempty"`
	CashAmount     types.Money `db:"cash_amount" json:"cashAmount"`
	OnlineAmount   types.Money `db:"online_amount" json:"onlineAmount"`
	CreditAmount   types.Money `db:"credit_amount" json:"creditAmount"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Items []OrderItem `db:"-" json:"items"`
}

// OrderItem is one merged line. PriceSnapshot is fixed when the line is first inserted.
type OrderItem struct {
	ID            id.ID       `db:"id" json:"id"`
	OrderID       id.ID       `db:"order_id" json:"orderId"`
	MenuItemID    id.ID       `db:"menu_item_id" json:"menuItemId"`
	Name          string      `db:"name" json:"name"`
	Department    string      `db:"department" json:"department"`
	Quantity      int         `db:"quantity" json:"quantity"`
	PriceSnapshot types.Money `db:"price_snapshot" json:"priceSnapshot"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
}

// LineTotal is PriceSnapshot * Quantity.
func (i OrderItem) LineTotal() types.Money {
	return types.LineTotal(i.PriceSnapshot, i.Quantity)
}

// ItemsTotal sums the order's lines from scratch.
func (o *Order) ItemsTotal() types.Money {
	total := types.Zero()
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// newOrder opens a pending order on t.
func newOrder(t *tables.Table, c customerFields, now time.Time) *Order {
	o := &Order{
		ID:             id.New(),
		TableID:        t.ID,
		TableCode:      t.TableCode,
		Status:         StatusPending,
		TotalAmount:    types.Zero(),
		CashAmount:     types.Zero(),
		OnlineAmount:   types.Zero(),
		CreditAmount:   types.Zero(),
		DiscountAmount: types.Zero(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	o.CustomerID = c.ID
	o.CustomerName = c.Name
	o.CustomerPhone = c.Phone
	return o
}

// Payload builds the event body for o.
func (o *Order) Payload(now time.Time) events.OrderPayload {
	items := make([]events.ItemPayload, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, events.ItemPayload{
			MenuItemID:    it.MenuItemID,
			Name:          it.Name,
			Department:    it.Department,
			Quantity:      it.Quantity,
			PriceSnapshot: it.PriceSnapshot,
		})
	}
	return events.OrderPayload{
		OrderID:     o.ID,
		TableCode:   o.TableCode,
		TotalAmount: o.TotalAmount,
		Items:       items,
		Status:      string(o.Status),
		OccurredAt:  now,
	}
}

// LineInput is a requested {menuItemId, quantity} pair.
type LineInput struct {
	MenuItemID id.ID `json:"menuItemId"`
	Quantity   int   `json:"quantity"`
}

// CartSubmission is a guest's request to add items to their table's order.
type CartSubmission struct {
	TableCode    string
	CustomerType tables.CustomerType
	Items        []LineInput
	CustomerName string
	MobileNumber string
}

// Validate checks the submission shape. Unknown menu items are not checked here.
func (s CartSubmission) Validate() error {
	return validateLines(s.Items)
}

// MaxLineQuantity bounds a single requested line.
const MaxLineQuantity = 1000

func validateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return apperror.NewInvalidInput("items", "at least one item is required")
	}
	for i, l := range lines {
		if id.IsNil(l.MenuItemID) {
			return apperror.NewInvalidInput("items", "menuItemId is required").WithDetail("index", i)
		}
		if l.Quantity <= 0 {
			return apperror.NewInvalidInput("items", "quantity must be positive").WithDetail("index", i)
		}
		if l.Quantity > MaxLineQuantity {
			return apperror.NewInvalidInput("items", fmt.Sprintf("quantity must not exceed %d", MaxLineQuantity)).WithDetail("index", i)
		}
	}
	return nil
}

// MenuItem is the read-only view of a menu entry.
type MenuItem struct {
	ID         id.ID       `db:"id"`
	Name       string      `db:"name"`
	Price      types.Money `db:"price"`
	Department string      `db:"department"`
}

// Customer is the read-only view of a registered customer.
type Customer struct {
	ID          id.ID  `db:"id"`
	FullName    string `db:"full_name"`
	PhoneNumber string `db:"phone_number"`
}

// customerFields are the optional identifying fields carried onto an order.
// A nil field means "not supplied".
type customerFields struct {
	ID    *id.ID
	Name  *string
	Phone *string
}

func (c customerFields) empty() bool {
	return c.ID == nil && c.Name == nil && c.Phone == nil
}

// missingFrom keeps only the fields that o does not already have set to the same value.
func (c customerFields) missingFrom(o *Order) customerFields {
	var out customerFields
	if c.ID != nil && (o.CustomerID == nil || *o.CustomerID != *c.ID) {
		out.ID = c.ID
	}
	if c.Name != nil && (o.CustomerName == nil || *o.CustomerName != *c.Name) {
		out.Name = c.Name
	}
	if c.Phone != nil && (o.CustomerPhone == nil || *o.CustomerPhone != *c.Phone) {
		out.Phone = c.Phone
	}
	return out
}

func (c customerFields) applyTo(o *Order) {
	if c.ID != nil {
		o.CustomerID = c.ID
	}
	if c.Name != nil {
		o.CustomerName = c.Name
	}
	if c.Phone != nil {
		o.CustomerPhone = c.Phone
	}
}

func nonBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
