package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/podgen/podcast-generator-backend/ws"
)

// HealthCheck reports service liveness, database reachability, and connected
// status-feed clients.
func HealthCheck(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	dbStatus := "ok"
	sqlDB, err := db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
	}

	status := http.StatusOK
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":     "ok",
		"database":   dbStatus,
		"ws_clients": ws.H.ClientCount(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
