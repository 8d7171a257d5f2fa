package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/harvest/models"
	"github.com/use-agent/harvest/orchestrator"
)

// Scrape returns a handler for POST /api/v1/scrape.
//
// The body is a ScrapeRequest. The response is always a ScrapeResponse
// envelope; its HTTP status follows the envelope's error code.
func Scrape(svc *orchestrator.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success:   false,
				Error:     err.Error(),
				ErrorCode: models.ErrCodeInvalidInput,
			})
			return
		}

		resp, err := svc.Scrape(c.Request.Context(), req)
		if err != nil {
			c.JSON(mapErrorToStatus(models.CodeOf(err)), resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(code string) int {
	switch code {
	case models.ErrCodeSourceNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeUnsupportedFormat, models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeNetwork, models.ErrCodeParse:
		return http.StatusBadGateway // 502
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeOverloaded:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}
