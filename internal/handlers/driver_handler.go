package handlers

import (
	"time"

	"ukbus/internal/middleware"
	"ukbus/internal/services"
	"ukbus/internal/utils"
	"ukbus/internal/validators"

	"github.com/gin-gonic/gin"
)

type DriverHandler struct {
	authService   services.AuthService
	driverService services.DriverService
}

func NewDriverHandler(authService services.AuthService, driverService services.DriverService) *DriverHandler {
	return &DriverHandler{
		authService:   authService,
		driverService: driverService,
	}
}

// Login authenticates a driver and returns a token pair
func (h *DriverHandler) Login(c *gin.Context) {
	var request validators.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Phone and password required")
		return
	}

	driver, tokens, err := h.authService.LoginDriver(c.Request.Context(), request.Phone, request.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"driver": gin.H{
			"id":         driver.ID.Hex(),
			"first_name": driver.FirstName,
			"last_name":  driver.LastName,
			"phone":      driver.Phone,
		},
	})
}

// Profile returns the authenticated driver
func (h *DriverHandler) Profile(c *gin.Context) {
	driverID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	driver, err := h.driverService.Profile(c.Request.Context(), driverID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver profile", gin.H{
		"id":         driver.ID.Hex(),
		"first_name": driver.FirstName,
		"last_name":  driver.LastName,
		"phone":      driver.Phone,
	})
}

// History lists the driver's validations. With a ?date=2006-01-02 query it
// is limited to that day, otherwise everything is returned.
func (h *DriverHandler) History(c *gin.Context) {
	driverID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	rawDate := c.Query("date")
	if rawDate == "" {
		validations, err := h.driverService.HistoryAll(c.Request.Context(), driverID)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		utils.SuccessResponse(c, "Validation history", gin.H{
			"count":       len(validations),
			"validations": validations,
		})
		return
	}

	day, err := time.ParseInLocation("2006-01-02", rawDate, time.Local)
	if err != nil {
		utils.BadRequestResponse(c, "Date must be in YYYY-MM-DD format")
		return
	}

	validations, err := h.driverService.HistoryForDay(c.Request.Context(), driverID, day)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Validation history", gin.H{
		"date":        rawDate,
		"count":       len(validations),
		"validations": validations,
	})
}
