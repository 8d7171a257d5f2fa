package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/harvest/models"
	"golang.org/x/sync/semaphore"
)

// Concurrency caps in-flight requests across all clients. Requests beyond
// max are rejected immediately with 503 rather than queued. A non-positive
// max disables the cap.
func Concurrency(max int) gin.HandlerFunc {
	if max <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	sem := semaphore.NewWeighted(int64(max))

	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			abort(c, http.StatusServiceUnavailable, models.ErrCodeOverloaded, "server is at capacity, retry shortly")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
