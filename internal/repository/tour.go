package repository

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TourRepository struct {
	db *gorm.DB
}

func NewTourRepository(db *gorm.DB) *TourRepository {
	return &TourRepository{db: db}
}

func (r *TourRepository) Create(ctx context.Context, t *models.Tour) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error)
}

func (r *TourRepository) Update(ctx context.Context, t *models.Tour) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(t).Error)
}

func (r *TourRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tour, error) {
	var t models.Tour
	if err := r.db.WithContext(ctx).Preload("Creator").First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *TourRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tour, error) {
	tours := []models.Tour{}
	if len(ids) == 0 {
		return tours, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tours).Error
	return tours, err
}

// Search lists Active tours, featured first then newest.
func (r *TourRepository) Search(ctx context.Context, filter services.TourFilter) ([]models.Tour, error) {
	q := r.db.WithContext(ctx).Where("status = ?", models.TourStatusActive)
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR title ILIKE ? OR description ILIKE ? OR location ILIKE ?", like, like, like, like)
	}
	if filter.MinPrice != nil {
		q = q.Where("price_per_person >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price_per_person <= ?", *filter.MaxPrice)
	}
	if filter.Difficulty != "" {
		q = q.Where("LOWER(difficulty) = LOWER(?)", filter.Difficulty)
	}
	if filter.Location != "" {
		q = q.Where("location ILIKE ?", "%"+filter.Location+"%")
	}
	if filter.Featured != nil {
		q = q.Where("featured = ?", *filter.Featured)
	}

	tours := []models.Tour{}
	err := q.Order("featured DESC").Order("created_at DESC").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&tours).Error
	return tours, err
}

// ListByStatus lists tours in the given status, any status when empty.
// submittedOnly keeps tours created by non-admin users.
func (r *TourRepository) ListByStatus(ctx context.Context, status models.TourStatus, submittedOnly bool) ([]models.Tour, error) {
	q := r.db.WithContext(ctx).Preload("Creator")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if submittedOnly {
		q = q.Where("created_by IN (?)", r.db.Model(&models.User{}).Select("id").Where("role <> ?", models.RoleAdmin))
	}
	tours := []models.Tour{}
	err := q.Order("created_at DESC").Find(&tours).Error
	return tours, err
}

func (r *TourRepository) ListByCreator(ctx context.Context, userID uuid.UUID) ([]models.Tour, error) {
	tours := []models.Tour{}
	err := r.db.WithContext(ctx).Where("created_by = ?", userID).Order("created_at DESC").Find(&tours).Error
	return tours, err
}
