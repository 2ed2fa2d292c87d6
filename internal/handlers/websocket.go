package handlers

import (
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler upgrades an authenticated admin connection onto the hub
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := principal(c)
		services.HandleWebSocket(hub, c.Writer, c.Request, p.UserID, string(p.Role))
	}
}
