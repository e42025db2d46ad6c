package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/orderflow/orderflow/internal/port/primary"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

// Routes bundles the dependencies NewRouter needs. A service binary
// constructs this from its own container; cmd/orderservice and
// cmd/paymentservice populate different subsets.
type Routes struct {
	Orders       primary.OrderService
	Payments     primary.PaymentService
	Outbox       secondary.OutboxRepository
	MaxRetries   int
	HealthChecks []secondary.HealthChecker
}

// NewRouter builds the gin engine with all application routes registered.
func NewRouter(routes Routes, logger *zap.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	health := NewHealthHandler(routes.HealthChecks)
	engine.GET("/health", health.ServeHTTP)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if routes.Outbox != nil {
		stats := NewStatsHandler(routes.Outbox, routes.MaxRetries)
		engine.GET("/internal/stats", stats.ServeHTTP)
	}

	api := engine.Group("/api")
	if routes.Orders != nil {
		orders := NewOrderHandler(routes.Orders)
		api.POST("/orders", orders.Create)
		api.GET("/orders/:id", orders.Get)
		api.POST("/orders/:id/retry-payment", orders.RetryPayment)
		api.POST("/orders/:id/cancel", orders.Cancel)
	}
	if routes.Payments != nil {
		payments := NewPaymentHandler(routes.Payments)
		api.GET("/payments/:id", payments.Get)
	}

	return engine
}

// requestLogger is a minimal gin middleware logging each request at
// Info level through the shared zap logger, in place of gin's default
// text logger.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	named := logger.Named("http")
	return func(c *gin.Context) {
		c.Next()
		named.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
