package services

import (
	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/google/uuid"
)

// Principal identifies the authenticated caller of a request.
type Principal struct {
	UserID    uuid.UUID
	Role      models.UserRole
	SessionID string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}
