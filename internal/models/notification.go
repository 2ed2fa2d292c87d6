package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

const (
	NotificationTypeBooking = "booking"
	NotificationTypePayment = "payment"
	NotificationTypeReview  = "review"
	NotificationTypeTour    = "tour"
	NotificationTypeSystem  = "system"
)

// Notification is a stored alert. A nil RecipientID addresses every admin.
type Notification struct {
	Base
	Title             string               `gorm:"not null" json:"title"`
	Message           string               `gorm:"type:text;not null" json:"message"`
	Type              string               `gorm:"not null;index" json:"type"`
	IsRead            bool                 `gorm:"not null;default:false;index" json:"isRead"`
	Priority          NotificationPriority `gorm:"type:text;not null;default:'normal'" json:"priority"`
	RecipientID       *uuid.UUID           `gorm:"type:uuid;index" json:"recipientId,omitempty"`
	RelatedEntityType string               `json:"relatedEntityType,omitempty"`
	RelatedEntityID   string               `json:"relatedEntityId,omitempty"`
	Metadata          datatypes.JSONMap    `gorm:"type:jsonb" json:"metadata,omitempty"`
}
