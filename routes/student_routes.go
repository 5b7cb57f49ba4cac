package routes

import (
	"ukbus/internal/handlers"
	"ukbus/internal/middleware"
	"ukbus/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupStudentRoutes sets up registration, login and account routes for students
func SetupStudentRoutes(r *gin.RouterGroup, studentHandler *handlers.StudentHandler, jwtSecret string) {
	students := r.Group("/students")
	{
		students.POST("/register", studentHandler.Register)
		students.POST("/login", studentHandler.Login)
	}

	account := r.Group("/students")
	account.Use(middleware.AuthRequired(jwtSecret), middleware.RoleRequired(services.RoleStudent))
	{
		account.GET("/me", studentHandler.Profile)
		account.POST("/recharge", studentHandler.Recharge)
		account.POST("/tickets/buy", studentHandler.BuyTicket)
		account.GET("/history", studentHandler.History)
	}
}
