package routes

import (
	"ukbus/internal/handlers"
	"ukbus/internal/middleware"
	"ukbus/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes sets up provider webhooks and transaction polling. The
// webhook endpoints stay public: FedaPay authenticates with its signature
// header and PayGate echoes identifiers we issued ourselves.
func SetupPaymentRoutes(r *gin.RouterGroup, webhookHandler *handlers.WebhookHandler, transactionHandler *handlers.TransactionHandler, jwtSecret string) {
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/fedapay", webhookHandler.FedaPay)
		webhooks.POST("/paygate", webhookHandler.PayGate)
	}

	transactions := r.Group("/transactions")
	transactions.Use(middleware.AuthRequired(jwtSecret), middleware.RoleRequired(services.RoleStudent, services.RoleAdmin))
	{
		transactions.GET("/:identifier/status", transactionHandler.Status)
	}
}
