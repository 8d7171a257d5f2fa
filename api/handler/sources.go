package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/harvest/models"
	"github.com/use-agent/harvest/orchestrator"
)

// ListSources returns a handler for GET /api/v1/sources.
func ListSources(svc *orchestrator.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sources": svc.Sources()})
	}
}

// GetSource returns a handler for GET /api/v1/sources/:id.
func GetSource(svc *orchestrator.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		desc, err := svc.Describe(c.Param("id"))
		if err != nil {
			c.JSON(mapErrorToStatus(models.CodeOf(err)), models.ScrapeResponse{
				Success:   false,
				Error:     err.Error(),
				ErrorCode: models.CodeOf(err),
			})
			return
		}
		c.JSON(http.StatusOK, desc)
	}
}
