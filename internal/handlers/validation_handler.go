package handlers

import (
	"net/http"

	"ukbus/internal/middleware"
	"ukbus/internal/services"
	"ukbus/internal/utils"
	"ukbus/internal/validators"

	"github.com/gin-gonic/gin"
)

type ValidationHandler struct {
	ticketService services.TicketService
}

func NewValidationHandler(ticketService services.TicketService) *ValidationHandler {
	return &ValidationHandler{ticketService: ticketService}
}

// Scan redeems one ticket from the QR payload a driver scanned. A student
// with no tickets is not an error for the driver's device, but the refusal
// is reported with a 400 so the app shows the red screen.
func (h *ValidationHandler) Scan(c *gin.Context) {
	driverID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.ScanRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "QR payload required")
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	result, err := h.ticketService.RedeemTicket(c.Request.Context(), driverID, request.QRPayload)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if !result.IsValid {
		utils.ErrorResponse(c, http.StatusBadRequest, "NO_TICKET", "No ticket available for this student")
		return
	}

	utils.SuccessResponse(c, "Ticket validated", result)
}
