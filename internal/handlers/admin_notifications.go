package handlers

import (
	"strconv"

	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
)

func AdminListNotifications(notifications NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		unread, _ := strconv.ParseBool(c.Query("unread"))
		filter := services.NotificationFilter{
			UnreadOnly: unread,
			Type:       c.Query("type"),
			Page:       queryPage(c),
		}

		list, total, err := notifications.ListAdmin(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err, "Notification")
			return
		}
		c.JSON(200, gin.H{"notifications": list, "total": total})
	}
}

func AdminMarkNotificationRead(notifications NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := notifications.MarkRead(c.Request.Context(), id, nil); err != nil {
			respondError(c, err, "Notification")
			return
		}
		c.JSON(200, gin.H{"message": "Notification marked as read"})
	}
}

func AdminMarkAllNotificationsRead(notifications NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := notifications.MarkAllRead(c.Request.Context())
		if err != nil {
			respondError(c, err, "Notification")
			return
		}
		c.JSON(200, gin.H{"message": "All notifications marked as read", "updated": n})
	}
}

func AdminDeleteNotification(notifications NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := notifications.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err, "Notification")
			return
		}
		c.JSON(200, gin.H{"message": "Notification deleted"})
	}
}

func AdminClearNotifications(notifications NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := notifications.ClearAll(c.Request.Context())
		if err != nil {
			respondError(c, err, "Notification")
			return
		}
		c.JSON(200, gin.H{"message": "All notifications cleared", "deleted": n})
	}
}
