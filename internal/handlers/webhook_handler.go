package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"ukbus/internal/repositories/interfaces"
	"ukbus/internal/services"
	"ukbus/internal/utils"
	"ukbus/pkg/logger"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	webhookService services.WebhookService
	ledgerService  services.LedgerService
	logger         *logger.Logger
}

func NewWebhookHandler(webhookService services.WebhookService, ledgerService services.LedgerService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		ledgerService:  ledgerService,
		logger:         log,
	}
}

// fedapayEvent is the envelope FedaPay posts: an event name and the
// transaction entity it concerns.
type fedapayEvent struct {
	Name   string                  `json:"name"`
	Entity *services.WebhookEntity `json:"entity"`
}

// FedaPay receives signed provider notifications. The signature is checked
// over the raw body before any parsing; once it passes, every outcome acks
// with 200 so the provider stops redelivering.
func (h *WebhookHandler) FedaPay(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "Unable to read request body")
		return
	}

	signature := c.GetHeader("X-Fedapay-Signature")
	if err := h.webhookService.VerifySignature(rawBody, signature); err != nil {
		h.logger.WithError(err).Warn("webhook signature rejected")
		handleServiceError(c, err)
		return
	}

	var event fedapayEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		h.logger.WithError(err).Warn("webhook body is not valid JSON")
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Malformed event ignored",
		})
		return
	}
	if event.Entity == nil {
		event.Entity = &services.WebhookEntity{}
	}

	// Ingestion errors are already logged and absorbed inside the service.
	_ = h.webhookService.Ingest(c.Request.Context(), event.Name, event.Entity)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Webhook processed",
		"event_type": event.Name,
	})
}

// paygateCallback is the shape of PayGate's confirmation call. The provider
// sends the numeric code as `status`; `tx_status` is kept as a fallback for
// deployments that echo the status-check field name instead.
type paygateCallback struct {
	Identifier string      `json:"identifier"`
	Status     json.Number `json:"status"`
	TxStatus   json.Number `json:"tx_status"`
	Amount     int64       `json:"amount"`
}

func (c *paygateCallback) statusCode() string {
	if c.Status != "" {
		return c.Status.String()
	}
	return c.TxStatus.String()
}

// PayGate receives the fallback provider's unsigned callback. The
// identifier it echoes is ours, so the lookup is direct; numeric status
// codes go through the same ledger funnel as FedaPay events.
func (h *WebhookHandler) PayGate(c *gin.Context) {
	var callback paygateCallback
	if err := c.ShouldBindJSON(&callback); err != nil {
		utils.BadRequestResponse(c, "Invalid callback body")
		return
	}
	if callback.Identifier == "" {
		utils.BadRequestResponse(c, "Identifier required")
		return
	}

	lookup := interfaces.TransactionLookup{Identifier: callback.Identifier}
	if _, err := h.ledgerService.ApplyProviderStatus(c.Request.Context(), lookup, callback.statusCode()); err != nil {
		h.logger.WithTransaction(callback.Identifier).WithError(err).
			Warn("paygate callback could not be applied")
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Callback received",
	})
}
