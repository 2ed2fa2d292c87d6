package repository

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LogRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

func (r *LogRepository) CreateAdminLog(ctx context.Context, entry *models.AdminLog) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error
}

func (r *LogRepository) CreateSystemLog(ctx context.Context, entry *models.SystemLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *LogRepository) ListAdminLogs(ctx context.Context, limit, offset int) ([]models.AdminLog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.AdminLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	entries := []models.AdminLog{}
	err := r.db.WithContext(ctx).Preload("Admin").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, total, err
}

func (r *LogRepository) ListSystemLogs(ctx context.Context, logType string, limit, offset int) ([]models.SystemLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.SystemLog{})
	if logType != "" {
		q = q.Where("type = ?", logType)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	entries := []models.SystemLog{}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, total, err
}
