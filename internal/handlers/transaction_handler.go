package handlers

import (
	"ukbus/internal/services"
	"ukbus/internal/utils"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	ledgerService services.LedgerService
}

func NewTransactionHandler(ledgerService services.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// Status serves client polling on a recharge by its identifier. Pending
// transactions trigger an opportunistic provider check before answering.
func (h *TransactionHandler) Status(c *gin.Context) {
	identifier := c.Param("identifier")
	if identifier == "" {
		utils.BadRequestResponse(c, "Transaction identifier required")
		return
	}

	transaction, err := h.ledgerService.GetStatus(c.Request.Context(), identifier)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Transaction status", gin.H{
		"identifier": transaction.Identifier,
		"status":     transaction.Status,
		"amount":     transaction.Amount,
		"provider":   transaction.Provider,
		"network":    transaction.Network,
		"type":       transaction.Type,
		"created_at": transaction.CreatedAt,
		"updated_at": transaction.UpdatedAt,
	})
}
