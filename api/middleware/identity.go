package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/harvest/models"
)

// apiKeyContextKey holds the authenticated key on the gin context.
const apiKeyContextKey = "api_key"

// presentedKey returns the key sent as X-API-Key or Authorization: Bearer,
// in that order, or "" when neither is set.
func presentedKey(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader("X-API-Key")); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// clientIdentity is the authenticated key when Auth ran, else the client IP.
func clientIdentity(c *gin.Context) string {
	if key := c.GetString(apiKeyContextKey); key != "" {
		return "key:" + key
	}
	return "ip:" + c.ClientIP()
}

// abort stops the chain with a failure envelope.
func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ScrapeResponse{
		Success:   false,
		Error:     message,
		ErrorCode: code,
	})
}
