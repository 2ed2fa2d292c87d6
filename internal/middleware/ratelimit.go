package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int) (bool, error)
}

// RateLimit caps requests per client IP within the limiter's window. A
// limiter error lets the request through.
func RateLimit(limiter RateLimiter, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP(), limit)
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(429, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
