package handlers

import (
	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/gin-gonic/gin"
)

func AdminListPayments(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, total, err := bookings.ListPayments(c.Request.Context(), models.PaymentStatus(c.Query("paymentStatus")), queryPage(c))
		if err != nil {
			respondError(c, err, "Payment")
			return
		}

		payments := make([]gin.H, 0, len(list))
		for _, b := range list {
			entry := gin.H{
				"bookingId":        b.ID,
				"amount":           b.TotalPrice,
				"paymentStatus":    b.PaymentStatus,
				"paymentMethod":    b.PaymentMethod,
				"paymentReference": b.PaymentReference,
				"paymentDate":      b.PaymentDate,
				"status":           b.Status,
				"createdAt":        b.CreatedAt,
			}
			if b.User != nil {
				entry["customer"] = gin.H{"id": b.User.ID, "name": b.User.DisplayName(), "email": b.User.Email}
			}
			if b.Tour != nil {
				entry["tour"] = gin.H{"id": b.Tour.ID, "title": b.Tour.Title}
			}
			payments = append(payments, entry)
		}
		c.JSON(200, gin.H{"payments": payments, "total": total})
	}
}

func AdminRefundPayment(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var input struct {
			Reason string `json:"reason"`
		}
		// The body is optional.
		_ = c.ShouldBindJSON(&input)

		booking, err := bookings.Refund(c.Request.Context(), principal(c).UserID, id, input.Reason)
		if err != nil {
			respondError(c, err, "Booking")
			return
		}
		c.JSON(200, gin.H{"message": "Refund processed", "booking": booking})
	}
}

func AdminSyncPayments(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := bookings.SyncPayments(c.Request.Context(), principal(c).UserID)
		if err != nil {
			respondError(c, err, "Payment")
			return
		}
		c.JSON(200, res)
	}
}
