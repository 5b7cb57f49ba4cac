package handlers

import (
	"errors"
	"io"

	"ukbus/internal/middleware"
	"ukbus/internal/services"
	"ukbus/internal/utils"
	"ukbus/internal/validators"

	"github.com/gin-gonic/gin"
)

type StudentHandler struct {
	authService    services.AuthService
	studentService services.StudentService
	ledgerService  services.LedgerService
	ticketService  services.TicketService
}

func NewStudentHandler(
	authService services.AuthService,
	studentService services.StudentService,
	ledgerService services.LedgerService,
	ticketService services.TicketService,
) *StudentHandler {
	return &StudentHandler{
		authService:    authService,
		studentService: studentService,
		ledgerService:  ledgerService,
		ticketService:  ticketService,
	}
}

// Register creates a student account
func (h *StudentHandler) Register(c *gin.Context) {
	var request validators.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	student, err := h.authService.RegisterStudent(c.Request.Context(), &services.RegisterRequest{
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Phone:     request.Phone,
		Password:  request.Password,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Student registered", gin.H{
		"id":         student.ID.Hex(),
		"first_name": student.FirstName,
		"last_name":  student.LastName,
		"phone":      student.Phone,
	})
}

// Login authenticates a student and returns a token pair
func (h *StudentHandler) Login(c *gin.Context) {
	var request validators.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Phone and password required")
		return
	}

	student, tokens, err := h.authService.LoginStudent(c.Request.Context(), request.Phone, request.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"student": gin.H{
			"id":         student.ID.Hex(),
			"first_name": student.FirstName,
			"last_name":  student.LastName,
			"phone":      student.Phone,
		},
	})
}

// Profile returns the authenticated student including balance and tickets
func (h *StudentHandler) Profile(c *gin.Context) {
	studentID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	student, err := h.studentService.Profile(c.Request.Context(), studentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Student profile", gin.H{
		"id":         student.ID.Hex(),
		"first_name": student.FirstName,
		"last_name":  student.LastName,
		"phone":      student.Phone,
		"balance":    student.Balance,
		"tickets":    student.Tickets,
	})
}

// Recharge opens a pending recharge transaction through the payment providers
func (h *StudentHandler) Recharge(c *gin.Context) {
	var request validators.RechargeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Phone and amount required")
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	transaction, err := h.ledgerService.OpenRecharge(c.Request.Context(), &services.RechargeRequest{
		Phone:   request.Phone,
		Amount:  request.Amount,
		Network: networkFromString(request.Network),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment initiated, confirm on your phone", gin.H{
		"transaction_id":     transaction.ID.Hex(),
		"identifier":         transaction.Identifier,
		"provider":           transaction.Provider,
		"provider_tx_id":     transaction.ProviderTxID,
		"provider_reference": transaction.ProviderReference,
		"amount":             transaction.Amount,
		"network":            transaction.Network,
		"status":             transaction.Status,
	})
}

// BuyTicket debits the balance and returns the QR payload for the new state
func (h *StudentHandler) BuyTicket(c *gin.Context) {
	studentID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	// An empty body means one ticket.
	request := validators.BuyTicketRequest{Quantity: 1}
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if request.Quantity == 0 {
		request.Quantity = 1
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	result, err := h.ticketService.BuyTickets(c.Request.Context(), studentID, request.Quantity)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	message := "Ticket(s) purchased"
	if result.LowBalance {
		message = "Ticket(s) purchased. Warning: your balance is low"
	}

	utils.SuccessResponse(c, message, result)
}

// History returns the student's purchases and validations
func (h *StudentHandler) History(c *gin.Context) {
	studentID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	history, err := h.studentService.History(c.Request.Context(), studentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "History retrieved", history)
}
