package handlers

import (
	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
)

func AdminListBookings(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := services.BookingFilter{
			Status:        models.BookingStatus(c.Query("status")),
			PaymentStatus: models.PaymentStatus(c.Query("paymentStatus")),
			Search:        c.Query("search"),
			Page:          queryPage(c),
		}

		list, total, err := bookings.AdminList(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err, "Booking")
			return
		}
		c.JSON(200, gin.H{"bookings": list, "total": total})
	}
}

func AdminGetBooking(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		booking, err := bookings.AdminGet(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Booking")
			return
		}
		c.JSON(200, booking)
	}
}

func AdminUpdateBookingStatus(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var input services.StatusUpdate
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		if input.Status == nil && input.PaymentStatus == nil {
			c.JSON(400, gin.H{"error": "status or paymentStatus is required"})
			return
		}

		booking, err := bookings.AdminUpdateStatus(c.Request.Context(), principal(c).UserID, id, input)
		if err != nil {
			respondError(c, err, "Booking")
			return
		}
		c.JSON(200, booking)
	}
}
