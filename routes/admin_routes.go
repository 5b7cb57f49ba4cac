package routes

import (
	"ukbus/internal/handlers"
	"ukbus/internal/middleware"
	"ukbus/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes sets up authentication, dashboard and driver management
// routes for admins
func SetupAdminRoutes(r *gin.RouterGroup, adminHandler *handlers.AdminHandler, jwtSecret string) {
	admins := r.Group("/admins")
	{
		admins.POST("/register", adminHandler.Register)
		admins.POST("/login", adminHandler.Login)
	}

	protected := r.Group("/admins")
	protected.Use(middleware.AuthRequired(jwtSecret), middleware.RoleRequired(services.RoleAdmin))
	{
		protected.GET("/dashboard", adminHandler.Dashboard)
		protected.GET("/drivers", adminHandler.ListDrivers)
		protected.POST("/drivers", adminHandler.AddDriver)
		protected.DELETE("/drivers/:id", adminHandler.DeleteDriver)
	}
}
