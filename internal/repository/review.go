package repository

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *models.Review) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error)
}

func (r *ReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var rv models.Review
	if err := r.db.WithContext(ctx).Preload("User").Preload("Tour").First(&rv, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

func (r *ReviewRepository) ExistsForUserTour(ctx context.Context, userID, tourID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ? AND tour_id = ?", userID, tourID).
		Count(&n).Error
	return n > 0, err
}

func (r *ReviewRepository) List(ctx context.Context, filter services.ReviewFilter) ([]models.Review, error) {
	q := r.db.WithContext(ctx).Preload("User").Preload("Tour")
	if filter.TourID != nil {
		q = q.Where("tour_id = ?", *filter.TourID)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	reviews := []models.Review{}
	err := q.Order("created_at DESC").Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus) error {
	return affected(r.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).Update("status", status))
}

func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id))
}

func (r *ReviewRepository) ApprovedRatings(ctx context.Context, tourID uuid.UUID) ([]int, error) {
	ratings := []int{}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("tour_id = ? AND status = ?", tourID, models.ReviewStatusApproved).
		Pluck("rating", &ratings).Error
	return ratings, err
}
