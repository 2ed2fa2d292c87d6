package handlers

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CouponService interface {
	Evaluate(ctx context.Context, code string, subtotal float64, tourIDs []uuid.UUID) (*services.CouponQuote, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Create(ctx context.Context, adminID uuid.UUID, in services.CouponInput) (*models.Coupon, error)
	Update(ctx context.Context, adminID, id uuid.UUID, in services.CouponInput) (*models.Coupon, error)
	Delete(ctx context.Context, adminID, id uuid.UUID) error
	SetActive(ctx context.Context, adminID, id uuid.UUID, active bool) (*models.Coupon, error)
	Usage(ctx context.Context, id uuid.UUID) ([]models.CouponUsage, error)
}

// ApplyCoupon quotes a discount without recording any usage
func ApplyCoupon(coupons CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			CouponCode string      `json:"couponCode" binding:"required,notblank"`
			Subtotal   float64     `json:"subtotal" binding:"required,gt=0"`
			TourIDs    []uuid.UUID `json:"tourIds"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		quote, err := coupons.Evaluate(c.Request.Context(), input.CouponCode, input.Subtotal, input.TourIDs)
		if err != nil {
			respondError(c, err, "Coupon")
			return
		}

		c.JSON(200, gin.H{
			"success":    true,
			"discount":   quote.Discount,
			"couponCode": quote.Coupon.Code,
			"type":       quote.Coupon.DiscountType,
		})
	}
}
