package repository

import (
	"context"
	"time"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error)
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	err := r.db.WithContext(ctx).Preload("Tour").Preload("User").First(&b, "bookings.id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := r.db.WithContext(ctx).Preload("Tour").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// List filters bookings for the admin view. Search matches the payment
// reference, tour title or customer email.
func (r *BookingRepository) List(ctx context.Context, filter services.BookingFilter) ([]models.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Booking{})
	if filter.Status != "" {
		q = q.Where("bookings.status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("bookings.payment_status = ?", filter.PaymentStatus)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Joins("LEFT JOIN tours ON tours.id = bookings.tour_id").
			Joins("LEFT JOIN users ON users.id = bookings.user_id").
			Where("bookings.payment_reference ILIKE ? OR tours.title ILIKE ? OR users.email ILIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	bookings := []models.Booking{}
	err := q.Preload("Tour").Preload("User").
		Order("bookings.created_at DESC").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&bookings).Error
	return bookings, total, err
}

// UpdateStatus persists the status axes and payment date only.
func (r *BookingRepository) UpdateStatus(ctx context.Context, b *models.Booking) error {
	b.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", b.ID).
		Updates(map[string]interface{}{
			"status":         b.Status,
			"payment_status": b.PaymentStatus,
			"payment_date":   b.PaymentDate,
			"updated_at":     b.UpdatedAt,
		})
	return affected(res)
}

func (r *BookingRepository) ListPendingPayments(ctx context.Context) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := r.db.WithContext(ctx).Preload("Tour").
		Where("payment_status = ? AND payment_reference <> ''", models.PaymentStatusPending).
		Order("created_at ASC").
		Find(&bookings).Error
	return bookings, err
}

// CreatePaidBookings writes every checkout booking and the coupon redemption
// in one transaction. The usage counter only moves while the coupon is active
// and under its limit.
func (r *BookingRepository) CreatePaidBookings(ctx context.Context, bookings []*models.Booking, redemption *services.CouponRedemption) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, b := range bookings {
			if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
				return err
			}
		}
		if redemption == nil || len(bookings) == 0 {
			return nil
		}

		res := tx.Exec(`UPDATE coupons SET used_count = used_count + 1, updated_at = ?
			WHERE id = ? AND is_active AND (usage_limit IS NULL OR used_count < usage_limit)`,
			time.Now(), redemption.CouponID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return services.ErrCouponExhausted
		}

		usage := &models.CouponUsage{
			CouponID:       redemption.CouponID,
			UserID:         redemption.UserID,
			BookingID:      bookings[0].ID,
			DiscountAmount: redemption.DiscountAmount,
			UsedAt:         time.Now(),
		}
		return tx.Omit(clause.Associations).Create(usage).Error
	})
	return translate(err)
}
