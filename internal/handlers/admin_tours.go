package handlers

import (
	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
)

func AdminListTours(tours TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := models.TourStatus(c.Query("status"))
		if status != "" && status != models.TourStatusActive && status != models.TourStatusInactive {
			c.JSON(400, gin.H{"error": "Invalid status"})
			return
		}

		list, err := tours.AdminList(c.Request.Context(), status)
		if err != nil {
			respondError(c, err, "Tour")
			return
		}
		c.JSON(200, gin.H{"tours": list})
	}
}

func AdminPendingTours(tours TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := tours.ListPending(c.Request.Context())
		if err != nil {
			respondError(c, err, "Tour")
			return
		}
		c.JSON(200, gin.H{"tours": list})
	}
}

func AdminCreateTour(tours TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.TourInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		tour, err := tours.Create(c.Request.Context(), principal(c).UserID, input)
		if err != nil {
			respondError(c, err, "Tour")
			return
		}
		c.JSON(201, tour)
	}
}

func AdminUpdateTour(tours TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var input services.TourInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		tour, err := tours.Update(c.Request.Context(), principal(c).UserID, id, input)
		if err != nil {
			respondError(c, err, "Tour")
			return
		}
		c.JSON(200, tour)
	}
}

// AdminDeleteTour deactivates the tour; tours are never hard-deleted
func AdminDeleteTour(tours TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		tour, err := tours.Deactivate(c.Request.Context(), principal(c).UserID, id)
		if err != nil {
			respondError(c, err, "Tour")
			return
		}
		c.JSON(200, gin.H{"message": "Tour deactivated", "tour": tour})
	}
}

func AdminModerateTour(tours TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var input struct {
			Action string `json:"action" binding:"required,oneof=approve reject"`
			Reason string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		tour, err := tours.Moderate(c.Request.Context(), principal(c).UserID, id, input.Action, input.Reason)
		if err != nil {
			respondError(c, err, "Tour")
			return
		}
		c.JSON(200, gin.H{"message": "Tour " + input.Action + "d", "tour": tour})
	}
}

// AdminUploadTourImage accepts a multipart "image" field
func AdminUploadTourImage(tours TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(400, gin.H{"error": "image file is required"})
			return
		}

		tour, err := tours.AddImage(c.Request.Context(), principal(c).UserID, id, file)
		if err != nil {
			respondError(c, err, "Tour")
			return
		}
		c.JSON(200, gin.H{"message": "Image uploaded", "tour": tour})
	}
}
