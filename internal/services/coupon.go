package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/pkg/utils"
	"github.com/google/uuid"
)

type CouponRepository interface {
	Create(ctx context.Context, c *models.Coupon) error
	Update(ctx context.Context, c *models.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ListUsage(ctx context.Context, couponID uuid.UUID) ([]models.CouponUsage, error)
}

// AdminAuditor records admin mutations.
type AdminAuditor interface {
	LogAdmin(ctx context.Context, adminID uuid.UUID, action, entity, entityID string)
}

// CouponQuote is the result of evaluating a code against a cart.
type CouponQuote struct {
	Coupon   *models.Coupon
	Discount float64
}

type CouponService struct {
	repo  CouponRepository
	audit AdminAuditor
	now   func() time.Time
}

func NewCouponService(repo CouponRepository, audit AdminAuditor) *CouponService {
	return &CouponService{repo: repo, audit: audit, now: time.Now}
}

// NormalizeCouponCode trims and upper-cases a code; lookups are case-insensitive.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluate checks code against subtotal and the cart's tours and prices the discount.
// Nothing is persisted; redemption happens inside the checkout transaction.
func (s *CouponService) Evaluate(ctx context.Context, code string, subtotal float64, tourIDs []uuid.UUID) (*CouponQuote, error) {
	code = NormalizeCouponCode(code)
	if code == "" {
		return nil, invalid("couponCode", "coupon code is required")
	}
	if subtotal <= 0 {
		return nil, invalid("subtotal", "subtotal must be greater than 0")
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrCouponInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("find coupon: %w", err)
	}

	if err := CheckCouponEligibility(coupon, subtotal, tourIDs, s.now()); err != nil {
		return nil, err
	}
	return &CouponQuote{Coupon: coupon, Discount: ComputeDiscount(coupon, subtotal)}, nil
}

// CheckCouponEligibility applies the active, window, usage, minimum and tour rules in that order.
func CheckCouponEligibility(c *models.Coupon, subtotal float64, tourIDs []uuid.UUID, now time.Time) error {
	if !c.IsActive {
		return ErrCouponInactive
	}
	if now.Before(c.ValidFrom) {
		return ErrCouponNotYetValid
	}
	if now.After(c.ValidUntil) {
		return ErrCouponExpired
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return ErrCouponExhausted
	}
	if c.MinimumAmount != nil && subtotal < *c.MinimumAmount {
		return fmt.Errorf("%w: minimum order amount is $%.2f", ErrCouponMinimum, *c.MinimumAmount)
	}
	if len(c.ApplicableToTours) > 0 && len(tourIDs) > 0 {
		allowed := make(map[string]bool, len(c.ApplicableToTours))
		for _, id := range c.ApplicableToTours {
			allowed[strings.ToLower(id)] = true
		}
		match := false
		for _, id := range tourIDs {
			if allowed[id.String()] {
				match = true
				break
			}
		}
		if !match {
			return ErrCouponNotApplicable
		}
	}
	return nil
}

// ComputeDiscount prices a coupon: percentage capped by MaximumDiscount, or a fixed amount,
// never exceeding the subtotal and rounded to cents.
func ComputeDiscount(c *models.Coupon, subtotal float64) float64 {
	var discount float64
	switch c.DiscountType {
	case models.DiscountPercentage:
		discount = subtotal * c.DiscountValue / 100
		if c.MaximumDiscount != nil && discount > *c.MaximumDiscount {
			discount = *c.MaximumDiscount
		}
	case models.DiscountFixed:
		discount = c.DiscountValue
	}
	discount = math.Max(0, math.Min(discount, subtotal))
	return utils.RoundCents(discount)
}

// CouponInput is the admin create/update payload.
type CouponInput struct {
	Code              string              `json:"code" binding:"required,notblank,max=50"`
	Name              string              `json:"name" binding:"required,notblank"`
	Description       string              `json:"description"`
	DiscountType      models.DiscountType `json:"discountType" binding:"required,oneof=percentage fixed"`
	DiscountValue     float64             `json:"discountValue" binding:"required,gt=0"`
	MinimumAmount     *float64            `json:"minimumAmount" binding:"omitempty,gte=0"`
	MaximumDiscount   *float64            `json:"maximumDiscount" binding:"omitempty,gt=0"`
	UsageLimit        *int                `json:"usageLimit" binding:"omitempty,gt=0"`
	IsActive          *bool               `json:"isActive"`
	ValidFrom         time.Time           `json:"validFrom" binding:"required"`
	ValidUntil        time.Time           `json:"validUntil" binding:"required"`
	ApplicableToTours []string            `json:"applicableToTours"`
}

func (in *CouponInput) validate() error {
	if !in.DiscountType.Valid() {
		return invalid("discountType", "discountType must be percentage or fixed")
	}
	if in.DiscountValue <= 0 {
		return invalid("discountValue", "discountValue must be greater than 0")
	}
	if in.DiscountType == models.DiscountPercentage && in.DiscountValue > 100 {
		return invalid("discountValue", "percentage discount cannot exceed 100")
	}
	if !in.ValidUntil.After(in.ValidFrom) {
		return invalid("validUntil", "validUntil must be after validFrom")
	}
	for _, id := range in.ApplicableToTours {
		if _, err := uuid.Parse(id); err != nil {
			return invalid("applicableToTours", "invalid tour id %q", id)
		}
	}
	return nil
}

func (in *CouponInput) apply(c *models.Coupon) {
	c.Code = NormalizeCouponCode(in.Code)
	c.Name = strings.TrimSpace(in.Name)
	c.Description = in.Description
	c.DiscountType = in.DiscountType
	c.DiscountValue = in.DiscountValue
	c.MinimumAmount = in.MinimumAmount
	c.MaximumDiscount = in.MaximumDiscount
	c.UsageLimit = in.UsageLimit
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.ValidFrom = in.ValidFrom
	c.ValidUntil = in.ValidUntil
	c.ApplicableToTours = make([]string, 0, len(in.ApplicableToTours))
	for _, id := range in.ApplicableToTours {
		c.ApplicableToTours = append(c.ApplicableToTours, strings.ToLower(id))
	}
}

func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	return s.repo.List(ctx)
}

func (s *CouponService) Get(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a new coupon. A duplicate code returns ErrDuplicate.
func (s *CouponService) Create(ctx context.Context, adminID uuid.UUID, in CouponInput) (*models.Coupon, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := &models.Coupon{IsActive: true, CreatedBy: &adminID}
	in.apply(c)

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.audit.LogAdmin(ctx, adminID, "Created coupon "+c.Code, "coupon", c.ID.String())
	return c, nil
}

func (s *CouponService) Update(ctx context.Context, adminID, id uuid.UUID, in CouponInput) (*models.Coupon, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(c)
	if c.UsageLimit != nil && c.UsedCount > *c.UsageLimit {
		return nil, invalid("usageLimit", "usageLimit cannot be below the current used count of %d", c.UsedCount)
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.audit.LogAdmin(ctx, adminID, "Updated coupon "+c.Code, "coupon", c.ID.String())
	return c, nil
}

func (s *CouponService) Delete(ctx context.Context, adminID, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.LogAdmin(ctx, adminID, "Deleted coupon "+c.Code, "coupon", id.String())
	return nil
}

func (s *CouponService) SetActive(ctx context.Context, adminID, id uuid.UUID, active bool) (*models.Coupon, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	state := "Deactivated"
	if active {
		state = "Activated"
	}
	s.audit.LogAdmin(ctx, adminID, state+" coupon "+c.Code, "coupon", id.String())
	return c, nil
}

func (s *CouponService) Usage(ctx context.Context, id uuid.UUID) ([]models.CouponUsage, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListUsage(ctx, id)
}
