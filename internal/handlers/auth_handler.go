package handlers

import (
	"ukbus/internal/services"
	"ukbus/internal/utils"
	"ukbus/internal/validators"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Refresh exchanges a valid refresh token for a new access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var request validators.RefreshRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Refresh token required")
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	accessToken, err := h.authService.RefreshAccessToken(c.Request.Context(), request.RefreshToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Token refreshed", gin.H{
		"access_token": accessToken,
	})
}
