package handlers

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WishlistService interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error)
	Add(ctx context.Context, userID, tourID uuid.UUID) (*models.Wishlist, bool, error)
	Remove(ctx context.Context, userID, tourID uuid.UUID) error
}

type wishlistInput struct {
	TourID uuid.UUID `json:"tourId" binding:"required"`
}

func GetWishlist(wishlist WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := wishlist.List(c.Request.Context(), principal(c).UserID)
		if err != nil {
			respondError(c, err, "Wishlist")
			return
		}
		c.JSON(200, gin.H{"wishlist": items})
	}
}

// AddToWishlist is idempotent; an existing entry answers 200
func AddToWishlist(wishlist WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input wishlistInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		item, created, err := wishlist.Add(c.Request.Context(), principal(c).UserID, input.TourID)
		if err != nil {
			respondError(c, err, "Tour")
			return
		}
		if !created {
			c.JSON(200, gin.H{"message": "Tour already in wishlist", "item": item})
			return
		}
		c.JSON(201, gin.H{"message": "Added to wishlist", "item": item})
	}
}

// RemoveFromWishlist takes the tour id from the path or the JSON body
func RemoveFromWishlist(wishlist WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tourID uuid.UUID
		if c.Param("tourId") != "" {
			id, ok := pathID(c, "tourId")
			if !ok {
				return
			}
			tourID = id
		} else {
			var input wishlistInput
			if err := c.ShouldBindJSON(&input); err != nil {
				bindError(c, err)
				return
			}
			tourID = input.TourID
		}

		if err := wishlist.Remove(c.Request.Context(), principal(c).UserID, tourID); err != nil {
			respondError(c, err, "Wishlist item")
			return
		}
		c.JSON(200, gin.H{"message": "Removed from wishlist"})
	}
}
