package handlers

import (
	"context"
	"strconv"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationService interface {
	ListAdmin(ctx context.Context, filter services.NotificationFilter) ([]models.Notification, int64, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, recipientID *uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ClearAll(ctx context.Context) (int64, error)
}

// GetMyNotifications lists notifications addressed to the caller
func GetMyNotifications(notifications NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		list, err := notifications.ListForUser(c.Request.Context(), principal(c).UserID, limit)
		if err != nil {
			respondError(c, err, "Notification")
			return
		}
		c.JSON(200, gin.H{"notifications": list})
	}
}

func MarkMyNotificationRead(notifications NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		userID := principal(c).UserID
		if err := notifications.MarkRead(c.Request.Context(), id, &userID); err != nil {
			respondError(c, err, "Notification")
			return
		}
		c.JSON(200, gin.H{"message": "Notification marked as read"})
	}
}
