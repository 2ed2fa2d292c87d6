package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/chachabrian/tourhub-backend/internal/middleware"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	msgPaymentFailed   = "Payment processing failed. Please try again."
	msgBookingFailed   = "Booking creation failed. Please contact support with your payment reference."
	msgRefundFailed    = "Failed to process refund with payment provider"
	msgCancelWindow    = "Cannot cancel booking within 24 hours of travel date"
	msgInternalFailure = "Internal server error"
)

// errorResponses is checked in order; the first match wins.
var errorResponses = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrUnauthorized, 401, "Authentication required"},
	{services.ErrSessionRevoked, 401, "Session has been revoked"},
	{services.ErrInvalidCredentials, 401, "Invalid email or password"},
	{services.ErrForbidden, 403, "You do not have permission to perform this action"},
	{services.ErrInvalidOTP, 400, "Invalid or expired code"},
	{services.ErrEmptyCart, 400, "Cart is empty"},
	{services.ErrInvalidCard, 400, "Invalid card details"},
	{services.ErrPaymentDeclined, 400, msgPaymentFailed},
	{services.ErrPaymentProvider, 500, msgPaymentFailed},
	{services.ErrTourUnavailable, 400, "Tour is not available for booking"},
	{services.ErrCouponInvalid, 400, "Invalid coupon code"},
	{services.ErrCouponInactive, 400, "Coupon is not active"},
	{services.ErrCouponNotYetValid, 400, "Coupon is not yet valid"},
	{services.ErrCouponExpired, 400, "Coupon has expired"},
	{services.ErrCouponExhausted, 400, "Coupon usage limit reached"},
	{services.ErrCouponMinimum, 400, "Order does not meet the coupon minimum amount"},
	{services.ErrCouponNotApplicable, 400, "Coupon does not apply to the selected tours"},
	{services.ErrInvalidTransition, 400, "Invalid status transition"},
	{services.ErrAlreadyCanceled, 400, "Booking is already canceled"},
	{services.ErrCancelWindow, 400, msgCancelWindow},
	{services.ErrAlreadyRefunded, 400, "Payment already refunded"},
	{services.ErrNotPaid, 400, "Only paid bookings can be refunded"},
	{services.ErrRefundFailed, 500, msgRefundFailed},
	{services.ErrAlreadyReviewed, 400, "You have already reviewed this tour"},
	{services.ErrSelfAction, 400, "You cannot perform this action on your own account"},
}

// respondError writes the JSON error for err. resource names the entity in
// not-found and conflict messages.
func respondError(c *gin.Context, err error, resource string) {
	var postPayment *services.PostPaymentError
	if errors.As(err, &postPayment) {
		log.Error().Err(err).Str("payment_reference", postPayment.PaymentReference).Bool("refunded", postPayment.Refunded).Msg("checkout persistence failed")
		c.JSON(500, gin.H{"error": msgBookingFailed, "paymentReference": postPayment.PaymentReference})
		return
	}

	var validation *services.ValidationError
	if errors.As(err, &validation) {
		c.JSON(400, gin.H{"error": validation.Message, "field": validation.Field})
		return
	}

	for _, r := range errorResponses {
		if errors.Is(err, r.err) {
			if r.status >= 500 {
				log.Error().Err(err).Str("path", c.FullPath()).Msg(r.message)
			}
			c.JSON(r.status, gin.H{"error": r.message})
			return
		}
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(404, gin.H{"error": resource + " not found"})
	case errors.Is(err, services.ErrDuplicate):
		c.JSON(409, gin.H{"error": resource + " already exists"})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(400, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Str("resource", resource).Msg("request failed")
		c.JSON(500, gin.H{"error": msgInternalFailure})
	}
}

// bindError reports the first binding or validation failure.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		c.JSON(400, gin.H{"error": fieldMessage(verrs[0]), "field": verrs[0].Field()})
		return
	}
	c.JSON(400, gin.H{"error": "Invalid request body"})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "len":
		return fe.Field() + " must be exactly " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt", "gte":
		return fe.Field() + " must be greater than " + fe.Param()
	case "url":
		return fe.Field() + " must be a valid URL"
	}
	return fe.Field() + " is invalid"
}

// pathID parses a uuid route parameter, writing a 400 when malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func queryPage(c *gin.Context) services.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return services.Page{Limit: limit, Offset: offset}
}

func principal(c *gin.Context) services.Principal {
	p, _ := middleware.GetPrincipal(c)
	return p
}
