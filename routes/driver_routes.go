package routes

import (
	"ukbus/internal/handlers"
	"ukbus/internal/middleware"
	"ukbus/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupDriverRoutes sets up login, profile and scan routes for drivers
func SetupDriverRoutes(r *gin.RouterGroup, driverHandler *handlers.DriverHandler, validationHandler *handlers.ValidationHandler, jwtSecret string) {
	drivers := r.Group("/drivers")
	{
		drivers.POST("/login", driverHandler.Login)
	}

	account := r.Group("/drivers")
	account.Use(middleware.AuthRequired(jwtSecret), middleware.RoleRequired(services.RoleDriver))
	{
		account.GET("/me", driverHandler.Profile)
		account.GET("/history", driverHandler.History)
		account.POST("/scan", validationHandler.Scan)
	}
}
