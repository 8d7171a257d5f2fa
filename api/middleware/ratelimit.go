package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/models"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL = time.Hour
	limiterSweep   = 5 * time.Minute
)

// buckets holds one token bucket per client identity.
type buckets struct {
	mu    sync.Mutex
	rps   rate.Limit
	burst int
	byID  map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newBuckets(rps float64, burst int) *buckets {
	if burst <= 0 {
		burst = 1
	}
	return &buckets{rps: rate.Limit(rps), burst: burst, byID: make(map[string]*bucket)}
}

// allow takes one token from id's bucket, creating the bucket on first use.
func (b *buckets) allow(id string, now time.Time) bool {
	b.mu.Lock()
	e, ok := b.byID[id]
	if !ok {
		e = &bucket{limiter: rate.NewLimiter(b.rps, b.burst)}
		b.byID[id] = e
	}
	e.lastSeen = now
	b.mu.Unlock()
	return e.limiter.AllowN(now, 1)
}

// sweep drops buckets idle since before cutoff and returns how many remain.
func (b *buckets) sweep(cutoff time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, e := range b.byID {
		if e.lastSeen.Before(cutoff) {
			delete(b.byID, id)
		}
	}
	return len(b.byID)
}

// RateLimit throttles each client (API key when authenticated, else IP) to
// cfg.RequestsPerSecond with bursts of cfg.Burst. A non-positive rate
// disables it.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	b := newBuckets(cfg.RequestsPerSecond, cfg.Burst)

	go func() {
		ticker := time.NewTicker(limiterSweep)
		defer ticker.Stop()
		for now := range ticker.C {
			b.sweep(now.Add(-limiterIdleTTL))
		}
	}()

	return func(c *gin.Context) {
		if !b.allow(clientIdentity(c), time.Now()) {
			abort(c, http.StatusTooManyRequests, models.ErrCodeRateLimited, "rate limit exceeded, please slow down")
			return
		}
		c.Next()
	}
}
