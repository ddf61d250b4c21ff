// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"restopos/internal/domain/auth"
	"restopos/internal/infrastructure/http/v1/middleware"
)

// AdminOrderRouteHandler defines the admin order management endpoints.
type AdminOrderRouteHandler interface {
	ListActive(c *gin.Context)
	History(c *gin.Context)
	Bill(c *gin.Context)
	UpdateStatus(c *gin.Context)
	AddItems(c *gin.Context)
	ReduceItem(c *gin.Context)
	RemoveItem(c *gin.Context)
}

// ReportRouteHandler defines the admin report endpoints.
type ReportRouteHandler interface {
	Sales(c *gin.Context)
	Profit(c *gin.Context)
	Credit(c *gin.Context)
}

// RegisterAdminOrderRoutes registers admin order routes on group.
// Kitchen staff may move orders through their statuses; billing, history and
// editing lines are reserved for cashiers and admins.
func RegisterAdminOrderRoutes(group *gin.RouterGroup, handler AdminOrderRouteHandler) {
	anyStaff := middleware.RequireRole(auth.RoleAdmin, auth.RoleCashier, auth.RoleKitchen)
	cashier := middleware.RequireRole(auth.RoleAdmin, auth.RoleCashier)

	group.GET("/active", anyStaff, handler.ListActive)
	group.GET("/history", cashier, handler.History)
	group.GET("/:orderId/bill", cashier, handler.Bill)
	group.PATCH("/:orderId/status", anyStaff, handler.UpdateStatus)
	group.POST("/:orderId/items", cashier, handler.AddItems)
	group.PATCH("/:orderId/items/:menuItemId/reduce", cashier, handler.ReduceItem)
	group.DELETE("/:orderId/items/:menuItemId", cashier, handler.RemoveItem)
}

// RegisterReportRoutes registers admin report routes on group.
func RegisterReportRoutes(group *gin.RouterGroup, handler ReportRouteHandler) {
	group.Use(middleware.RequireRole(auth.RoleAdmin))
	group.GET("/sales", handler.Sales)
	group.GET("/profit", handler.Profit)
	group.GET("/credit", handler.Credit)
}
