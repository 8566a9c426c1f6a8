package api

import (
	"course_sales/internal/metrics"
	"course_sales/internal/sales"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InitRoutes registers the webhook and sales endpoints on the given Gin engine.
func InitRoutes(e *gin.Engine, salesService *sales.Service, verifier *sales.Verifier, webhookMetrics *metrics.WebhookMetrics, logger *zap.Logger) {
	salesHandler := NewSalesHandler(salesService, verifier, webhookMetrics, logger)

	// Signed by Stripe; no session auth.
	e.POST("/stripe/webhook", salesHandler.handleStripeWebhook)
	e.GET("/sales", salesHandler.handlerGetSales)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
