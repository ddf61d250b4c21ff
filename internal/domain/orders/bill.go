package orders

import (
	"restopos/internal/core/id"
	"restopos/internal/core/types"
	"restopos/internal/domain/reports"
)

// ClosedStatuses are the terminal order states listed in the history view.
var ClosedStatuses = []Status{StatusPaid, StatusCancelled}

// History is the list of closed orders in a date window.
type History struct {
	Period reports.Period `json:"period"`
	Orders []*Order       `json:"orders"`
}

// BillLine is one printed line of a bill.
type BillLine struct {
	MenuItemID id.ID       `json:"menuItemId"`
	Name       string      `json:"name"`
	Quantity   int         `json:"quantity"`
	UnitPrice  types.Money `json:"unitPrice"`
	LineTotal  types.Money `json:"lineTotal"`
}

// Bill is what the cashier presents before payment capture.
type Bill struct {
	OrderID       id.ID       `json:"orderId"`
	TableCode     string      `json:"tableCode"`
	Status        Status      `json:"status"`
	CustomerName  *string     `json:"customerName,omitempty"`
	CustomerPhone *string     `json:"customerPhone,omitempty"`
	Lines         []BillLine  `json:"lines"`
	Subtotal      types.Money `json:"subtotal"`
	Discount      types.Money `json:"discount"`
	NetPayable    types.Money `json:"netPayable"`
}

// NewBill prices o from its lines. The discount never pushes the net below zero.
func NewBill(o *Order) *Bill {
	b := &Bill{
		OrderID:       o.ID,
		TableCode:     o.TableCode,
		Status:        o.Status,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Lines:         make([]BillLine, len(o.Items)),
		Subtotal:      o.ItemsTotal(),
		Discount:      o.DiscountAmount,
	}
	for i, it := range o.Items {
		b.Lines[i] = BillLine{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.PriceSnapshot,
			LineTotal:  it.LineTotal(),
		}
	}
	b.NetPayable = b.Subtotal.Sub(b.Discount)
	if b.NetPayable.IsNegative() {
		b.NetPayable = types.Zero()
	}
	return b
}
