package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func (d DiscountType) Valid() bool {
	return d == DiscountPercentage || d == DiscountFixed
}

// Coupon is a promotional code. A nil UsageLimit means unlimited redemptions
// and an empty ApplicableToTours means every tour qualifies.
type Coupon struct {
	Base
	Code              string                      `gorm:"uniqueIndex;not null" json:"code"`
	Name              string                      `json:"name"`
	Description       string                      `json:"description,omitempty"`
	DiscountType      DiscountType                `gorm:"type:text;not null" json:"discountType"`
	DiscountValue     float64                     `gorm:"type:numeric(10,2);not null" json:"discountValue"`
	MinimumAmount     *float64                    `gorm:"type:numeric(10,2)" json:"minimumAmount,omitempty"`
	MaximumDiscount   *float64                    `gorm:"type:numeric(10,2)" json:"maximumDiscount,omitempty"`
	UsageLimit        *int                        `json:"usageLimit,omitempty"`
	UsedCount         int                         `gorm:"not null;default:0" json:"usedCount"`
	IsActive          bool                        `gorm:"not null;default:true" json:"isActive"`
	ValidFrom         time.Time                   `gorm:"not null" json:"validFrom"`
	ValidUntil        time.Time                   `gorm:"not null" json:"validUntil"`
	ApplicableToTours datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"applicableToTours"`
	CreatedBy         *uuid.UUID                  `gorm:"type:uuid" json:"createdBy,omitempty"`
}

// CouponUsage records one redemption at checkout.
type CouponUsage struct {
	Base
	CouponID       uuid.UUID `gorm:"type:uuid;not null;index" json:"couponId"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	User           *User     `json:"user,omitempty"`
	BookingID      uuid.UUID `gorm:"type:uuid;not null" json:"bookingId"`
	DiscountAmount float64   `gorm:"type:numeric(10,2);not null" json:"discountAmount"`
	UsedAt         time.Time `gorm:"not null" json:"usedAt"`
}

func (CouponUsage) TableName() string {
	return "coupon_usage"
}
