package handlers

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckoutService interface {
	Checkout(ctx context.Context, userID uuid.UUID, req services.CheckoutRequest) (*services.CheckoutResult, error)
	CreatePaymentIntent(ctx context.Context, userID uuid.UUID, req services.PaymentIntentRequest) (*services.PaymentIntentResult, error)
}

// Checkout charges the cart once and creates one paid booking per line
func Checkout(checkout CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		res, err := checkout.Checkout(c.Request.Context(), principal(c).UserID, req)
		if err != nil {
			respondError(c, err, "Tour")
			return
		}

		c.JSON(200, gin.H{
			"success":          true,
			"bookings":         res.Bookings,
			"paymentReference": res.PaymentReference,
			"subtotal":         res.Subtotal,
			"discount":         res.Discount,
			"total":            res.Total,
			"message":          "Booking confirmed! A confirmation email has been sent.",
		})
	}
}

func CreatePaymentIntent(checkout CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.PaymentIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		res, err := checkout.CreatePaymentIntent(c.Request.Context(), principal(c).UserID, req)
		if err != nil {
			respondError(c, err, "Payment")
			return
		}

		c.JSON(200, gin.H{
			"success":          true,
			"paymentReference": res.PaymentReference,
			"clientSecret":     res.ClientSecret,
			"amount":           res.Amount,
			"currency":         res.Currency,
			"status":           res.Status,
		})
	}
}
