package repository

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

func (r *WishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error) {
	items := []models.Wishlist{}
	err := r.db.WithContext(ctx).Preload("Tour").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *WishlistRepository) Find(ctx context.Context, userID, tourID uuid.UUID) (*models.Wishlist, error) {
	var w models.Wishlist
	err := r.db.WithContext(ctx).Preload("Tour").
		Where("user_id = ? AND tour_id = ?", userID, tourID).
		First(&w).Error
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *WishlistRepository) Create(ctx context.Context, w *models.Wishlist) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(w).Error)
}

func (r *WishlistRepository) Delete(ctx context.Context, userID, tourID uuid.UUID) error {
	return affected(r.db.WithContext(ctx).
		Where("user_id = ? AND tour_id = ?", userID, tourID).
		Delete(&models.Wishlist{}))
}
