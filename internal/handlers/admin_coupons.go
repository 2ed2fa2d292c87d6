package handlers

import (
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
)

func AdminListCoupons(coupons CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := coupons.List(c.Request.Context())
		if err != nil {
			respondError(c, err, "Coupon")
			return
		}
		c.JSON(200, gin.H{"coupons": list})
	}
}

func AdminCreateCoupon(coupons CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CouponInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		coupon, err := coupons.Create(c.Request.Context(), principal(c).UserID, input)
		if err != nil {
			respondError(c, err, "Coupon code")
			return
		}
		c.JSON(201, coupon)
	}
}

func AdminUpdateCoupon(coupons CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var input services.CouponInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		coupon, err := coupons.Update(c.Request.Context(), principal(c).UserID, id, input)
		if err != nil {
			respondError(c, err, "Coupon")
			return
		}
		c.JSON(200, coupon)
	}
}

func AdminDeleteCoupon(coupons CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := coupons.Delete(c.Request.Context(), principal(c).UserID, id); err != nil {
			respondError(c, err, "Coupon")
			return
		}
		c.JSON(200, gin.H{"message": "Coupon deleted"})
	}
}

func AdminToggleCoupon(coupons CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var input struct {
			IsActive *bool `json:"isActive" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		coupon, err := coupons.SetActive(c.Request.Context(), principal(c).UserID, id, *input.IsActive)
		if err != nil {
			respondError(c, err, "Coupon")
			return
		}
		c.JSON(200, coupon)
	}
}

func AdminCouponUsage(coupons CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		usage, err := coupons.Usage(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Coupon")
			return
		}
		c.JSON(200, gin.H{"usage": usage, "count": len(usage)})
	}
}
