package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AdminLog is an append-only record of an admin mutation.
type AdminLog struct {
	Base
	AdminID        uuid.UUID `gorm:"type:uuid;not null;index" json:"adminId"`
	Admin          *User     `json:"admin,omitempty"`
	Action         string    `gorm:"not null" json:"action"`
	AffectedEntity string    `gorm:"not null" json:"affectedEntity"`
	EntityID       string    `json:"entityId"`
}

const (
	SystemLogError          = "error"
	SystemLogPaymentFailure = "payment_failure"
	SystemLogSystem         = "system"
)

type SystemLog struct {
	Base
	Type     string            `gorm:"not null;index" json:"type"`
	Message  string            `gorm:"type:text;not null" json:"message"`
	Metadata datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	UserID   *uuid.UUID        `gorm:"type:uuid" json:"userId,omitempty"`
}
