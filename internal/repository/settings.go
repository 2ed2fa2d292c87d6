package repository

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) List(ctx context.Context) ([]models.Setting, error) {
	settings := []models.Setting{}
	err := r.db.WithContext(ctx).Order("category, key").Find(&settings).Error
	return settings, err
}

// Upsert writes the batch keyed on setting key.
func (r *SettingRepository) Upsert(ctx context.Context, settings []models.Setting) error {
	if len(settings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "category", "description", "is_public", "updated_by", "updated_at"}),
	}).Create(&settings).Error
}
