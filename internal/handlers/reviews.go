package handlers

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/middleware"
	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewService interface {
	Create(ctx context.Context, userID uuid.UUID, in services.ReviewInput) (*models.Review, error)
	ListPublic(ctx context.Context, tourID, userID *uuid.UUID, viewer *services.Principal, page services.Page) ([]models.Review, error)
	Delete(ctx context.Context, caller services.Principal, id uuid.UUID) error
	AdminList(ctx context.Context, status models.ReviewStatus, page services.Page) ([]models.Review, error)
	SetStatus(ctx context.Context, adminID, id uuid.UUID, status models.ReviewStatus) (*models.Review, error)
}

func optionalUUID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid " + key})
		return nil, false
	}
	return &id, true
}

// CreateReview stores a pending review for moderation
func CreateReview(reviews ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.ReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		review, err := reviews.Create(c.Request.Context(), principal(c).UserID, input)
		if err != nil {
			respondError(c, err, "Tour")
			return
		}
		c.JSON(201, gin.H{"message": "Review submitted and awaiting approval", "review": review})
	}
}

// GetReviews lists approved reviews, filtered by tour or author
func GetReviews(reviews ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tourID, ok := optionalUUID(c, "tourId")
		if !ok {
			return
		}
		userID, ok := optionalUUID(c, "userId")
		if !ok {
			return
		}

		var viewer *services.Principal
		if p, ok := middleware.GetPrincipal(c); ok {
			viewer = &p
		}

		list, err := reviews.ListPublic(c.Request.Context(), tourID, userID, viewer, queryPage(c))
		if err != nil {
			respondError(c, err, "Review")
			return
		}
		c.JSON(200, gin.H{"reviews": list})
	}
}

func DeleteReview(reviews ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := reviews.Delete(c.Request.Context(), principal(c), id); err != nil {
			respondError(c, err, "Review")
			return
		}
		c.JSON(200, gin.H{"message": "Review deleted"})
	}
}
