package handlers

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type LogService interface {
	ListAdminLogs(ctx context.Context, page services.Page) ([]models.AdminLog, int64, error)
	ListSystemLogs(ctx context.Context, logType string, page services.Page) ([]models.SystemLog, int64, error)
}

func AdminListLogs(logs LogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, total, err := logs.ListAdminLogs(c.Request.Context(), queryPage(c))
		if err != nil {
			respondError(c, err, "Log")
			return
		}

		out := make([]gin.H, 0, len(entries))
		for _, e := range entries {
			entry := gin.H{
				"id":             e.ID,
				"action":         e.Action,
				"affectedEntity": e.AffectedEntity,
				"entityId":       e.EntityID,
				"createdAt":      e.CreatedAt,
			}
			if e.Admin != nil {
				entry["admin"] = gin.H{"id": e.Admin.ID, "name": e.Admin.DisplayName(), "email": e.Admin.Email}
			}
			out = append(out, entry)
		}
		c.JSON(200, gin.H{"logs": out, "total": total})
	}
}

func AdminListSystemLogs(logs LogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, total, err := logs.ListSystemLogs(c.Request.Context(), c.Query("type"), queryPage(c))
		if err != nil {
			respondError(c, err, "Log")
			return
		}
		c.JSON(200, gin.H{"logs": entries, "total": total})
	}
}
