package routes

import (
	"ukbus/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the token refresh endpoint shared by all roles
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	auth := r.Group("/auth")
	{
		auth.POST("/refresh", authHandler.Refresh)
	}
}
