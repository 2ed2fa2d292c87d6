package handlers

import (
	"context"
	"mime/multipart"
	"strconv"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TourService interface {
	List(ctx context.Context, filter services.TourFilter) ([]models.Tour, error)
	Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*services.TourDetail, error)
	Submit(ctx context.Context, userID uuid.UUID, in services.TourInput) (*models.Tour, error)
	ListByCreator(ctx context.Context, userID uuid.UUID) ([]models.Tour, error)
	AdminList(ctx context.Context, status models.TourStatus) ([]models.Tour, error)
	ListPending(ctx context.Context) ([]models.Tour, error)
	Create(ctx context.Context, adminID uuid.UUID, in services.TourInput) (*models.Tour, error)
	Update(ctx context.Context, adminID, id uuid.UUID, in services.TourInput) (*models.Tour, error)
	Deactivate(ctx context.Context, adminID, id uuid.UUID) (*models.Tour, error)
	Moderate(ctx context.Context, adminID, id uuid.UUID, action, reason string) (*models.Tour, error)
	AddImage(ctx context.Context, adminID, id uuid.UUID, file *multipart.FileHeader) (*models.Tour, error)
}

func optionalFloat(c *gin.Context, key string) (*float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid " + key})
		return nil, false
	}
	return &v, true
}

// ListTours returns Active tours matching the query filters
func ListTours(tours TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := services.TourFilter{
			Search:     c.Query("search"),
			Difficulty: c.Query("difficulty"),
			Location:   c.Query("location"),
			Page:       queryPage(c),
		}

		var ok bool
		if filter.MinPrice, ok = optionalFloat(c, "minPrice"); !ok {
			return
		}
		if filter.MaxPrice, ok = optionalFloat(c, "maxPrice"); !ok {
			return
		}
		if raw := c.Query("featured"); raw != "" {
			featured, err := strconv.ParseBool(raw)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid featured"})
				return
			}
			filter.Featured = &featured
		}

		list, err := tours.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err, "Tour")
			return
		}
		c.JSON(200, gin.H{"tours": list, "count": len(list)})
	}
}

// GetTour returns a tour with its approved rating summary
func GetTour(tours TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		detail, err := tours.Get(c.Request.Context(), id, principal(c).IsAdmin())
		if err != nil {
			respondError(c, err, "Tour")
			return
		}
		c.JSON(200, detail)
	}
}

// SubmitTour stores a user-proposed tour as Inactive until an admin approves it
func SubmitTour(tours TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.TourInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		tour, err := tours.Submit(c.Request.Context(), principal(c).UserID, input)
		if err != nil {
			respondError(c, err, "Tour")
			return
		}
		c.JSON(201, gin.H{"message": "Tour submitted for review", "tour": tour})
	}
}

func GetMyTours(tours TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := tours.ListByCreator(c.Request.Context(), principal(c).UserID)
		if err != nil {
			respondError(c, err, "Tour")
			return
		}
		c.JSON(200, gin.H{"tours": list})
	}
}
