package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"restopos/internal/core/id"
	"restopos/internal/domain/orders"
	"restopos/internal/infrastructure/http/v1/dto"
)

// OrderService is the order workflow used by the handlers.
type OrderService interface {
	PlaceOrder(ctx context.Context, sub orders.CartSubmission) (*orders.Order, error)
	GetOrder(ctx context.Context, orderID id.ID) (*orders.Order, error)
	ListActive(ctx context.Context) ([]*orders.Order, error)
	ListHistory(ctx context.Context, start, end string) (*orders.History, error)
	GetBill(ctx context.Context, orderID id.ID) (*orders.Bill, error)
	AddItems(ctx context.Context, orderID id.ID, lines []orders.LineInput) (*orders.Order, error)
	ReduceItem(ctx context.Context, orderID, menuItemID id.ID) (*orders.Order, error)
	RemoveItem(ctx context.Context, orderID, menuItemID id.ID) (*orders.Order, error)
	UpdateStatus(ctx context.Context, orderID id.ID, to orders.Status) (*orders.Order, error)
}

// OrderHandler handles cart submission and admin order management.
type OrderHandler struct {
	*BaseHandler
	service OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service OrderService) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// PlaceOrder handles POST /orders and responds with the merged order.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sub, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	order, err := h.service.PlaceOrder(c.Request.Context(), sub)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromOrder(order))
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(order))
}

// ListActive handles GET /admin/orders/active.
func (h *OrderHandler) ListActive(c *gin.Context) {
	list, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(dto.FromOrders(list)))
}

// History handles GET /admin/orders/history.
func (h *OrderHandler) History(c *gin.Context) {
	var req dto.ReportRangeRequest
	if !h.BindQuery(c, &req) {
		return
	}

	history, err := h.service.ListHistory(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromHistory(history))
}

// Bill handles GET /admin/orders/:orderId/bill.
func (h *OrderHandler) Bill(c *gin.Context) {
	orderID, ok := h.PathID(c, "orderId")
	if !ok {
		return
	}

	bill, err := h.service.GetBill(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBill(bill))
}

// UpdateStatus handles PATCH /admin/orders/:orderId/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := h.PathID(c, "orderId")
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	status, err := orders.ParseStatus(req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), orderID, status)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(order))
}

// AddItems handles POST /admin/orders/:orderId/items.
func (h *OrderHandler) AddItems(c *gin.Context) {
	orderID, ok := h.PathID(c, "orderId")
	if !ok {
		return
	}

	var req dto.AddItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	order, err := h.service.AddItems(c.Request.Context(), orderID, lines)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(order))
}

// ReduceItem handles PATCH /admin/orders/:orderId/items/:menuItemId/reduce.
func (h *OrderHandler) ReduceItem(c *gin.Context) {
	h.lineMutation(c, h.service.ReduceItem)
}

// RemoveItem handles DELETE /admin/orders/:orderId/items/:menuItemId.
func (h *OrderHandler) RemoveItem(c *gin.Context) {
	h.lineMutation(c, h.service.RemoveItem)
}

func (h *OrderHandler) lineMutation(c *gin.Context, fn func(ctx context.Context, orderID, menuItemID id.ID) (*orders.Order, error)) {
	orderID, ok := h.PathID(c, "orderId")
	if !ok {
		return
	}
	menuItemID, ok := h.PathID(c, "menuItemId")
	if !ok {
		return
	}

	order, err := fn(c.Request.Context(), orderID, menuItemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(order))
}
