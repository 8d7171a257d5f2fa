package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/harvest/models"
	"github.com/use-agent/harvest/orchestrator"
)

// Version is reported by the health endpoint. Overridden at link time.
var Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// Reports "degraded" when no source is enabled.
func Health(svc *orchestrator.Service, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		active := len(svc.Sources())

		status := "healthy"
		if active == 0 {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:        status,
			Uptime:        time.Since(startTime).Round(time.Second).String(),
			Version:       Version,
			ActiveSources: active,
		})
	}
}
