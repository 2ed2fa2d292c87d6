package repository

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Save(u).Error)
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id))
}

func (r *UserRepository) List(ctx context.Context, filter services.UserFilter) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("email ILIKE ? OR name ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?", like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := []models.User{}
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&users).Error
	return users, total, err
}

type OTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

func (r *OTPRepository) Create(ctx context.Context, otp *models.OTP) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

func (r *OTPRepository) InvalidateAll(ctx context.Context, userID uuid.UUID, otpType models.OTPType) error {
	return r.db.WithContext(ctx).Model(&models.OTP{}).
		Where("user_id = ? AND type = ? AND used = ?", userID, otpType, false).
		Update("used", true).Error
}

// FindActive returns the newest unused code; expiry is checked by the caller.
func (r *OTPRepository) FindActive(ctx context.Context, userID uuid.UUID, otpType models.OTPType, code string) (*models.OTP, error) {
	var otp models.OTP
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND code = ? AND used = ?", userID, otpType, code, false).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, translate(err)
	}
	return &otp, nil
}

func (r *OTPRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Model(&models.OTP{}).Where("id = ?", id).Update("used", true))
}
