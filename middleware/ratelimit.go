package middleware

import (
	"net/http"
	"sync"

	"voice-agent-platform/internal/config"
	"voice-agent-platform/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware implements per-IP rate limiting with in-process token
// buckets. Limiter state lives for the process lifetime; the demo deployment
// runs a single instance so no shared store is needed.
func RateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	getLimiter := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		limiter, ok := limiters[ip]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
			limiters[ip] = limiter
		}
		return limiter
	}

	return func(c *gin.Context) {
		// Skip rate limiting for health checks
		if c.FullPath() == "/health" {
			c.Next()
			return
		}

		if !getLimiter(c.ClientIP()).Allow() {
			utils.RespondWithError(c, http.StatusTooManyRequests,
				"rate_limit_exceeded",
				"Too many requests. Please try again later.",
				gin.H{
					"limit": cfg.RateLimitRPS,
					"burst": cfg.RateLimitBurst,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}
