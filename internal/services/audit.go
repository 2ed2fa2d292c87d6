package services

import (
	"context"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type LogRepository interface {
	CreateAdminLog(ctx context.Context, entry *models.AdminLog) error
	CreateSystemLog(ctx context.Context, entry *models.SystemLog) error
	ListAdminLogs(ctx context.Context, limit, offset int) ([]models.AdminLog, int64, error)
	ListSystemLogs(ctx context.Context, logType string, limit, offset int) ([]models.SystemLog, int64, error)
}

// AuditService writes the append-only admin and system logs.
// Writes are best effort: a failed log insert never fails the caller.
type AuditService struct {
	repo LogRepository
}

func NewAuditService(repo LogRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) LogAdmin(ctx context.Context, adminID uuid.UUID, action, entity, entityID string) {
	entry := &models.AdminLog{
		AdminID:        adminID,
		Action:         action,
		AffectedEntity: entity,
		EntityID:       entityID,
	}
	if err := s.repo.CreateAdminLog(ctx, entry); err != nil {
		log.Error().Err(err).Str("admin_id", adminID.String()).Str("action", action).Msg("failed to write admin log")
	}
}

func (s *AuditService) LogSystem(ctx context.Context, logType, message string, metadata map[string]interface{}, userID *uuid.UUID) {
	entry := &models.SystemLog{
		Type:     logType,
		Message:  message,
		Metadata: metadata,
		UserID:   userID,
	}
	if err := s.repo.CreateSystemLog(ctx, entry); err != nil {
		log.Error().Err(err).Str("type", logType).Str("message", message).Msg("failed to write system log")
	}
}

func (s *AuditService) ListAdminLogs(ctx context.Context, page Page) ([]models.AdminLog, int64, error) {
	page = page.Normalize(50, 200)
	return s.repo.ListAdminLogs(ctx, page.Limit, page.Offset)
}

func (s *AuditService) ListSystemLogs(ctx context.Context, logType string, page Page) ([]models.SystemLog, int64, error) {
	page = page.Normalize(50, 200)
	return s.repo.ListSystemLogs(ctx, logType, page.Limit, page.Offset)
}
