package repository

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CouponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// Create writes every column so an explicit isActive=false is not replaced
// by the column default.
func (r *CouponRepository) Create(ctx context.Context, c *models.Coupon) error {
	return translate(r.db.WithContext(ctx).Select("*").Create(c).Error)
}

// Update writes the admin-editable columns only. used_count belongs to the
// guarded checkout increment, so it is re-read into c instead of written.
func (r *CouponRepository) Update(ctx context.Context, c *models.Coupon) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(c).Select("*").Omit("id", "created_at", "created_by", "used_count").Updates(c)
		if err := affected(res); err != nil {
			return err
		}
		return translate(tx.Select("used_count").First(c, "id = ?", c.ID).Error)
	})
}

func (r *CouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&models.Coupon{}, "id = ?", id))
}

func (r *CouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	coupons := []models.Coupon{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&coupons).Error
	return coupons, err
}

func (r *CouponRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return affected(r.db.WithContext(ctx).Model(&models.Coupon{}).Where("id = ?", id).Update("is_active", active))
}

func (r *CouponRepository) ListUsage(ctx context.Context, couponID uuid.UUID) ([]models.CouponUsage, error) {
	usage := []models.CouponUsage{}
	err := r.db.WithContext(ctx).Preload("User").
		Where("coupon_id = ?", couponID).
		Order("used_at DESC").
		Find(&usage).Error
	return usage, err
}
