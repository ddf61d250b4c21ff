package v1

import (
	"github.com/gin-gonic/gin"

	"restopos/internal/infrastructure/http/v1/handlers"
	"restopos/internal/infrastructure/http/v1/middleware"
	"restopos/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for admin token validation
	JWTValidator middleware.JWTValidator

	Orders  handlers.OrderService
	Reports handlers.ReportService

	// Database backs the readiness probe
	Database handlers.Database

	// OrderStream upgrades /ws/orders connections; nil disables the route
	OrderStream gin.HandlerFunc

	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	if cfg.Database != nil {
		healthHandler := handlers.NewHealthHandler(cfg.Database)
		health := router.Group("/health")
		{
			health.GET("/live", healthHandler.Live)
			health.GET("/ready", healthHandler.Ready)
		}
	}

	if cfg.OrderStream != nil {
		router.GET("/ws/orders", cfg.OrderStream)
	}

	baseHandler := handlers.NewBaseHandler()
	orderHandler := handlers.NewOrderHandler(baseHandler, cfg.Orders)

	v1 := router.Group("/api/v1")
	{
		// Guest storefront
		v1.POST("/orders", orderHandler.PlaceOrder)
		v1.GET("/orders/:id", orderHandler.Get)

		admin := v1.Group("/admin")
		admin.Use(middleware.Auth(cfg.JWTValidator))

		RegisterAdminOrderRoutes(admin.Group("/orders"), orderHandler)

		if cfg.Reports != nil {
			reportHandler := handlers.NewReportsHandler(baseHandler, cfg.Reports)
			RegisterReportRoutes(admin.Group("/reports"), reportHandler)
		}
	}

	return router
}
