package handlers

import (
	"ukbus/internal/services"
	"ukbus/internal/utils"
	"ukbus/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminHandler struct {
	authService  services.AuthService
	adminService services.AdminService
}

func NewAdminHandler(authService services.AuthService, adminService services.AdminService) *AdminHandler {
	return &AdminHandler{
		authService:  authService,
		adminService: adminService,
	}
}

// Register creates an admin account
func (h *AdminHandler) Register(c *gin.Context) {
	var request validators.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	admin, err := h.authService.RegisterAdmin(c.Request.Context(), &services.RegisterRequest{
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Phone:     request.Phone,
		Password:  request.Password,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Admin registered", gin.H{
		"id":    admin.ID.Hex(),
		"phone": admin.Phone,
	})
}

// Login authenticates an admin and returns a token pair
func (h *AdminHandler) Login(c *gin.Context) {
	var request validators.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Phone and password required")
		return
	}

	admin, tokens, err := h.authService.LoginAdmin(c.Request.Context(), request.Phone, request.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"admin": gin.H{
			"id":    admin.ID.Hex(),
			"phone": admin.Phone,
		},
	})
}

// Dashboard returns the operational counters for the admin home screen
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Dashboard statistics", stats)
}

// ListDrivers returns every registered driver
func (h *AdminHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.adminService.ListDrivers(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Drivers retrieved", gin.H{
		"count":   len(drivers),
		"drivers": drivers,
	})
}

// AddDriver creates a driver account on behalf of an admin
func (h *AdminHandler) AddDriver(c *gin.Context) {
	var request validators.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	driver, err := h.authService.RegisterDriver(c.Request.Context(), &services.RegisterRequest{
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Phone:     request.Phone,
		Password:  request.Password,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Driver registered", gin.H{
		"id":         driver.ID.Hex(),
		"first_name": driver.FirstName,
		"last_name":  driver.LastName,
		"phone":      driver.Phone,
	})
}

// DeleteDriver removes a driver account
func (h *AdminHandler) DeleteDriver(c *gin.Context) {
	driverID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid driver id")
		return
	}

	if err := h.adminService.DeleteDriver(c.Request.Context(), driverID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver deleted", nil)
}
