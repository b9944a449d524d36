package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	db      *gorm.DB
	version string
}

func NewHealthController(db *gorm.DB, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// Health reports service and database status.
// GET /health
func (hc *HealthController) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK

	sqlDB, err := hc.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{"status": status, "version": hc.version})
}

// Ping is a trivial liveness endpoint.
// GET /ping
func (hc *HealthController) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
