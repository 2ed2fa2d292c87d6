package handlers

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserAdminService interface {
	List(ctx context.Context, filter services.UserFilter) ([]models.User, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, adminID uuid.UUID, in services.CreateUserInput) (*models.User, error)
	UpdateRole(ctx context.Context, adminID, id uuid.UUID, role models.UserRole) (*models.User, error)
	SetEmailVerified(ctx context.Context, adminID, id uuid.UUID, verified bool) (*models.User, error)
	Delete(ctx context.Context, adminID, id uuid.UUID) error
}

func AdminListUsers(users UserAdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := services.UserFilter{
			Role:   models.UserRole(c.Query("role")),
			Search: c.Query("search"),
			Page:   queryPage(c),
		}
		list, total, err := users.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err, "User")
			return
		}
		c.JSON(200, gin.H{"users": list, "total": total})
	}
}

func AdminGetUser(users UserAdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		user, err := users.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "User")
			return
		}
		c.JSON(200, user)
	}
}

func AdminCreateUser(users UserAdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CreateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		user, err := users.Create(c.Request.Context(), principal(c).UserID, input)
		if err != nil {
			respondError(c, err, "User with this email")
			return
		}
		c.JSON(201, user)
	}
}

func AdminUpdateUserRole(users UserAdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var input struct {
			Role models.UserRole `json:"role" binding:"required,oneof=User Admin"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		user, err := users.UpdateRole(c.Request.Context(), principal(c).UserID, id, input.Role)
		if err != nil {
			respondError(c, err, "User")
			return
		}
		c.JSON(200, user)
	}
}

func AdminUpdateUserStatus(users UserAdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var input struct {
			EmailVerified *bool `json:"emailVerified" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		user, err := users.SetEmailVerified(c.Request.Context(), principal(c).UserID, id, *input.EmailVerified)
		if err != nil {
			respondError(c, err, "User")
			return
		}
		c.JSON(200, user)
	}
}

func AdminDeleteUser(users UserAdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := users.Delete(c.Request.Context(), principal(c).UserID, id); err != nil {
			respondError(c, err, "User")
			return
		}
		c.JSON(200, gin.H{"message": "User deleted"})
	}
}
