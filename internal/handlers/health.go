package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Pinger is satisfied by the pgx pool and by PingFunc adapters.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Health reports unhealthy when any dependency fails its ping
func Health(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
				c.JSON(503, gin.H{"status": "unhealthy", "error": name + ": " + err.Error()})
				return
			}
		}
		c.JSON(200, gin.H{"status": "healthy"})
	}
}
