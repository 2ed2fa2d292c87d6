package models

import (
	"time"

	"github.com/google/uuid"
)

// OTPType defines the purpose of the OTP
type OTPType string

const (
	OTPTypePasswordReset OTPType = "password_reset"
)

// OTP stores one-time codes sent by email.
type OTP struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	Code      string    `json:"-"`
	Type      OTPType   `json:"type"`
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `gorm:"default:false" json:"used"`
}

// IsValid checks if the OTP is valid (not expired and not used)
func (o *OTP) IsValid(now time.Time) bool {
	return !o.Used && now.Before(o.ExpiresAt)
}
