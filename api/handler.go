package api

import (
	"errors"
	"net/http"

	"course_sales/internal/metrics"
	"course_sales/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBodyBytes caps webhook payloads; checkout events are far smaller.
const maxWebhookBodyBytes = 65536

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	verifier     *sales.Verifier
	metrics      *metrics.WebhookMetrics
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, verifier *sales.Verifier, webhookMetrics *metrics.WebhookMetrics, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		verifier:     verifier,
		metrics:      webhookMetrics,
		logger:       logger,
	}
}

// handleStripeWebhook handles the POST /stripe/webhook endpoint.
// The body is read untouched because the signature covers the exact bytes.
func (h *salesHandler) handleStripeWebhook(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBodyBytes)
	payload, err := ctx.GetRawData()
	if err != nil {
		h.logger.Warn("failed to read webhook body", zap.Error(err))
		h.metrics.IncOutcome(metrics.OutcomeRejected)
		ctx.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
		return
	}

	event, err := h.verifier.Verify(payload, ctx.GetHeader(sales.SignatureHeader))
	if err != nil {
		h.logger.Warn("webhook signature verification failed", zap.Error(err))
		h.metrics.IncOutcome(metrics.OutcomeRejected)
		ctx.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
		return
	}

	h.logger.Info("processing webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
	)

	sale, err := h.salesService.HandleEvent(ctx.Request.Context(), event)
	var persistErr *sales.PersistenceError
	switch {
	case err == nil && sale == nil:
		h.metrics.IncOutcome(metrics.OutcomeIgnored)
	case err == nil:
		h.metrics.IncOutcome(metrics.OutcomeRecorded)
	case errors.Is(err, sales.ErrAlreadyProcessed):
		h.metrics.IncOutcome(metrics.OutcomeDuplicate)
	case errors.Is(err, sales.ErrInvalidCheckout):
		// Redelivery cannot fix the payload, so it is acknowledged and left for reconciliation.
		h.logger.Error("unusable checkout event", zap.String("event_id", event.ID), zap.Error(err))
		h.metrics.IncOutcome(metrics.OutcomeInvalid)
	case errors.As(err, &persistErr):
		h.metrics.IncOutcome(metrics.OutcomeFailed)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record sale"})
		return
	default:
		h.logger.Error("failed to handle webhook event", zap.String("event_id", event.ID), zap.Error(err))
		h.metrics.IncOutcome(metrics.OutcomeFailed)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"received": true})
}

// handlerGetSales handles GET /sales?user_id=, the courses a user has unlocked.
func (h *salesHandler) handlerGetSales(ctx *gin.Context) {
	userID := ctx.Query("user_id")

	salesResults, metadata, err := h.salesService.ListUserSales(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, sales.ErrUserRequired) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sales"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"results": salesResults, "metadata": metadata})
}
