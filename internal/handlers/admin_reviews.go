package handlers

import (
	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/gin-gonic/gin"
)

func AdminListReviews(reviews ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := reviews.AdminList(c.Request.Context(), models.ReviewStatus(c.Query("status")), queryPage(c))
		if err != nil {
			respondError(c, err, "Review")
			return
		}
		c.JSON(200, gin.H{"reviews": list})
	}
}

func AdminUpdateReviewStatus(reviews ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var input struct {
			Status models.ReviewStatus `json:"status" binding:"required,oneof=pending approved rejected"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		review, err := reviews.SetStatus(c.Request.Context(), principal(c).UserID, id, input.Status)
		if err != nil {
			respondError(c, err, "Review")
			return
		}
		c.JSON(200, review)
	}
}
