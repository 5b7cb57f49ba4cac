package handlers

import (
	"net/http"

	"ukbus/pkg/database"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	db      *database.MongoDB
	version string
}

func NewHealthHandler(db *database.MongoDB, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// Check reports liveness plus database reachability.
func (h *HealthHandler) Check(c *gin.Context) {
	dbStatus := "up"
	status := http.StatusOK
	if err := h.db.Ping(); err != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   dbStatus == "up",
		"version":  h.version,
		"database": dbStatus,
	})
}
