package dto

import (
	"strings"
	"time"

	"restopos/internal/core/apperror"
	"restopos/internal/core/id"
	"restopos/internal/core/types"
	"restopos/internal/domain/orders"
	"restopos/internal/domain/reports"
	"restopos/internal/domain/tables"
)

// OrderLineRequest is one requested cart line.
type OrderLineRequest struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

// PlaceOrderRequest is the cart submission body.
type PlaceOrderRequest struct {
	TableCode    string             `json:"tableCode"`
	CustomerType string             `json:"customerType"`
	Items        []OrderLineRequest `json:"items"`
	CustomerName string             `json:"customerName"`
	MobileNumber string             `json:"mobileNumber"`
}

// ToDomain converts the request to a cart submission.
func (r PlaceOrderRequest) ToDomain() (orders.CartSubmission, error) {
	ct, err := tables.ParseCustomerType(r.CustomerType)
	if err != nil {
		return orders.CartSubmission{}, err
	}
	lines, err := toLines(r.Items)
	if err != nil {
		return orders.CartSubmission{}, err
	}
	return orders.CartSubmission{
		TableCode:    strings.TrimSpace(r.TableCode),
		CustomerType: ct,
		Items:        lines,
		CustomerName: r.CustomerName,
		MobileNumber: r.MobileNumber,
	}, nil
}

// AddItemsRequest adds lines to an existing open order.
type AddItemsRequest struct {
	Items []OrderLineRequest `json:"items"`
}

// ToDomain converts the request to order lines.
func (r AddItemsRequest) ToDomain() ([]orders.LineInput, error) {
	return toLines(r.Items)
}

func toLines(items []OrderLineRequest) ([]orders.LineInput, error) {
	lines := make([]orders.LineInput, 0, len(items))
	for i, it := range items {
		menuID, err := id.ParseField("menuItemId", it.MenuItemID)
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return nil, appErr.WithDetail("index", i)
			}
			return nil, err
		}
		lines = append(lines, orders.LineInput{MenuItemID: menuID, Quantity: it.Quantity})
	}
	return lines, nil
}

// UpdateStatusRequest changes an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderItemResponse is one order line.
type OrderItemResponse struct {
	ID            string      `json:"id"`
	MenuItemID    string      `json:"menuItemId"`
	Name          string      `json:"name"`
	Department    string      `json:"department"`
	Quantity      int         `json:"quantity"`
	PriceSnapshot types.Money `json:"priceSnapshot"`
	LineTotal     types.Money `json:"lineTotal"`
}

// OrderResponse is the merged order returned to the storefront and admin UI.
type OrderResponse struct {
	ID             string              `json:"id"`
	TableID        string              `json:"tableId"`
	TableCode      string              `json:"tableCode"`
	Status         string              `json:"status"`
	TotalAmount    types.Money         `json:"totalAmount"`
	CustomerID     *string             `json:"customerId,omitempty"`
	CustomerName   *string             `json:"customerName,omitempty"`
	CustomerPhone  *string             `json:"customerPhone,omitempty"`
	PaymentMethod  *string             `json:"paymentMethod,omitempty"`
	DiscountAmount types.Money         `json:"discountAmount"`
	Items          []OrderItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// FromOrder converts domain order to response DTO.
func FromOrder(o *orders.Order) OrderResponse {
	resp := OrderResponse{
		ID:             o.ID.String(),
		TableID:        o.TableID.String(),
		TableCode:      o.TableCode,
		Status:         string(o.Status),
		TotalAmount:    o.TotalAmount,
		CustomerName:   o.CustomerName,
		CustomerPhone:  o.CustomerPhone,
		PaymentMethod:  o.PaymentMethod,
		DiscountAmount: o.DiscountAmount,
		Items:          make([]OrderItemResponse, len(o.Items)),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if o.CustomerID != nil {
		s := o.CustomerID.String()
		resp.CustomerID = &s
	}

	for i, it := range o.Items {
		resp.Items[i] = OrderItemResponse{
			ID:            it.ID.String(),
			MenuItemID:    it.MenuItemID.String(),
			Name:          it.Name,
			Department:    it.Department,
			Quantity:      it.Quantity,
			PriceSnapshot: it.PriceSnapshot,
			LineTotal:     it.LineTotal(),
		}
	}
	return resp
}

// FromOrders converts a list of orders.
func FromOrders(list []*orders.Order) []OrderResponse {
	out := make([]OrderResponse, len(list))
	for i, o := range list {
		out[i] = FromOrder(o)
	}
	return out
}

// OrderHistoryResponse lists closed orders for a date window.
type OrderHistoryResponse struct {
	Period     reports.Period  `json:"period"`
	Items      []OrderResponse `json:"items"`
	TotalCount int             `json:"totalCount"`
}

// FromHistory converts the closed-order history.
func FromHistory(h *orders.History) OrderHistoryResponse {
	items := FromOrders(h.Orders)
	return OrderHistoryResponse{Period: h.Period, Items: items, TotalCount: len(items)}
}

// BillLineResponse is one line of a bill.
type BillLineResponse struct {
	MenuItemID string      `json:"menuItemId"`
	Name       string      `json:"name"`
	Quantity   int         `json:"quantity"`
	UnitPrice  types.Money `json:"unitPrice"`
	LineTotal  types.Money `json:"lineTotal"`
}

// BillResponse is the priced order shown before payment.
type BillResponse struct {
	OrderID       string             `json:"orderId"`
	TableCode     string             `json:"tableCode"`
	Status        string             `json:"status"`
	CustomerName  *string            `json:"customerName,omitempty"`
	CustomerPhone *string            `json:"customerPhone,omitempty"`
	Lines         []BillLineResponse `json:"lines"`
	Subtotal      types.Money        `json:"subtotal"`
	Discount      types.Money        `json:"discount"`
	NetPayable    types.Money        `json:"netPayable"`
}

// FromBill converts domain bill to response DTO.
func FromBill(b *orders.Bill) BillResponse {
	resp := BillResponse{
		OrderID:       b.OrderID.String(),
		TableCode:     b.TableCode,
		Status:        string(b.Status),
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		Lines:         make([]BillLineResponse, len(b.Lines)),
		Subtotal:      b.Subtotal,
		Discount:      b.Discount,
		NetPayable:    b.NetPayable,
	}
	for i, l := range b.Lines {
		resp.Lines[i] = BillLineResponse{
			MenuItemID: l.MenuItemID.String(),
			Name:       l.Name,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			LineTotal:  l.LineTotal,
		}
	}
	return resp
}
