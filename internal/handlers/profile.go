package handlers

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProfileService interface {
	Profile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, upd services.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, in services.ChangePasswordInput) error
}

func GetProfile(users ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.Profile(c.Request.Context(), principal(c).UserID)
		if err != nil {
			respondError(c, err, "User")
			return
		}
		c.JSON(200, user)
	}
}

func UpdateProfile(users ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.ProfileUpdate
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		user, err := users.UpdateProfile(c.Request.Context(), principal(c).UserID, input)
		if err != nil {
			respondError(c, err, "User")
			return
		}
		c.JSON(200, gin.H{"message": "Profile updated", "user": user})
	}
}

func ChangePassword(users ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.ChangePasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		if err := users.ChangePassword(c.Request.Context(), principal(c).UserID, input); err != nil {
			respondError(c, err, "User")
			return
		}
		c.JSON(200, gin.H{"message": "Password updated"})
	}
}
