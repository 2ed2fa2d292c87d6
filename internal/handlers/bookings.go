package handlers

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingService interface {
	Create(ctx context.Context, userID uuid.UUID, in services.CreateBookingInput) (*models.Booking, error)
	List(ctx context.Context, caller services.Principal) ([]models.Booking, error)
	Get(ctx context.Context, caller services.Principal, id uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, userID, id uuid.UUID) (*models.Booking, error)
	AdminList(ctx context.Context, filter services.BookingFilter) ([]models.Booking, int64, error)
	AdminGet(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	AdminUpdateStatus(ctx context.Context, adminID, id uuid.UUID, upd services.StatusUpdate) (*models.Booking, error)
	ListPayments(ctx context.Context, status models.PaymentStatus, page services.Page) ([]models.Booking, int64, error)
	Refund(ctx context.Context, adminID, id uuid.UUID, reason string) (*models.Booking, error)
	SyncPayments(ctx context.Context, adminID uuid.UUID) (*services.SyncResult, error)
}

// CreateBooking stores a single Pending booking priced from the catalog
func CreateBooking(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CreateBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		booking, err := bookings.Create(c.Request.Context(), principal(c).UserID, input)
		if err != nil {
			respondError(c, err, "Tour")
			return
		}
		c.JSON(201, booking)
	}
}

// GetBookings lists the caller's bookings, or every booking for an admin
func GetBookings(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := bookings.List(c.Request.Context(), principal(c))
		if err != nil {
			respondError(c, err, "Booking")
			return
		}
		c.JSON(200, gin.H{"bookings": list})
	}
}

func GetBooking(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		booking, err := bookings.Get(c.Request.Context(), principal(c), id)
		if err != nil {
			respondError(c, err, "Booking")
			return
		}
		c.JSON(200, booking)
	}
}

// CancelBooking serves both PATCH /:id/cancel and DELETE /:id
func CancelBooking(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		booking, err := bookings.Cancel(c.Request.Context(), principal(c).UserID, id)
		if err != nil {
			respondError(c, err, "Booking")
			return
		}
		c.JSON(200, gin.H{"message": "Booking canceled", "booking": booking})
	}
}

// UpdateBooking only lets owners move their booking to Canceled
func UpdateBooking(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var input struct {
			Status models.BookingStatus `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		caller := principal(c)
		if input.Status != models.BookingStatusCanceled {
			if !caller.IsAdmin() {
				c.JSON(403, gin.H{"error": "Only admins can change booking status"})
				return
			}
			booking, err := bookings.AdminUpdateStatus(c.Request.Context(), caller.UserID, id, services.StatusUpdate{Status: &input.Status})
			if err != nil {
				respondError(c, err, "Booking")
				return
			}
			c.JSON(200, booking)
			return
		}

		booking, err := bookings.Cancel(c.Request.Context(), caller.UserID, id)
		if err != nil {
			respondError(c, err, "Booking")
			return
		}
		c.JSON(200, gin.H{"message": "Booking canceled", "booking": booking})
	}
}
