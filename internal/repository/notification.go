package repository

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admin notifications are the rows with no recipient.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) admin(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id IS NULL")
}

func (r *NotificationRepository) ListAdmin(ctx context.Context, filter services.NotificationFilter) ([]models.Notification, int64, error) {
	q := r.admin(ctx)
	if filter.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	items := []models.Notification{}
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&items).Error
	return items, total, err
}

func (r *NotificationRepository) ListForRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]models.Notification, error) {
	items := []models.Notification{}
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID, recipientID *uuid.UUID) error {
	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id)
	if recipientID != nil {
		q = q.Where("recipient_id = ?", *recipientID)
	}
	return affected(q.Update("is_read", true))
}

func (r *NotificationRepository) MarkAllAdminRead(ctx context.Context) (int64, error) {
	res := r.admin(ctx).Where("is_read = ?", false).Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&models.Notification{}, "id = ?", id))
}

func (r *NotificationRepository) DeleteAllAdmin(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("recipient_id IS NULL").Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
