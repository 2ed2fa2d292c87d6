package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SettingsService interface {
	GetAll(ctx context.Context) (map[string]interface{}, error)
	GetPublic(ctx context.Context) (map[string]interface{}, error)
	Update(ctx context.Context, adminID uuid.UUID, values map[string]interface{}) (map[string]interface{}, error)
}

// AuditLogger records admin actions.
type AuditLogger interface {
	LogAdmin(ctx context.Context, adminID uuid.UUID, action, entity, entityID string)
}

func AdminGetSettings(settings SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := settings.GetAll(c.Request.Context())
		if err != nil {
			respondError(c, err, "Settings")
			return
		}
		c.JSON(200, gin.H{"settings": all})
	}
}

// AdminUpdateSettings upserts known keys; unknown keys are ignored
func AdminUpdateSettings(settings SettingsService, audit AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Settings map[string]interface{} `json:"settings" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		adminID := principal(c).UserID
		updated, err := settings.Update(c.Request.Context(), adminID, input.Settings)
		if err != nil {
			respondError(c, err, "Settings")
			return
		}
		audit.LogAdmin(c.Request.Context(), adminID, "Updated system settings", "settings", "")
		c.JSON(200, gin.H{"message": "Settings updated", "settings": updated})
	}
}

func GetPublicSettings(settings SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		public, err := settings.GetPublic(c.Request.Context())
		if err != nil {
			respondError(c, err, "Settings")
			return
		}
		c.JSON(200, gin.H{"settings": public})
	}
}
