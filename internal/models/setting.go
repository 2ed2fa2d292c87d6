package models

import "github.com/google/uuid"

type SettingType string

const (
	SettingString  SettingType = "string"
	SettingNumber  SettingType = "number"
	SettingBoolean SettingType = "boolean"
	SettingJSON    SettingType = "json"
)

// Setting is one key of the site configuration. Value is stored encoded as text.
type Setting struct {
	Base
	Key         string      `gorm:"uniqueIndex;not null" json:"key"`
	Value       string      `gorm:"type:text" json:"value"`
	Description string      `json:"description,omitempty"`
	Type        SettingType `gorm:"type:text;not null;default:'string'" json:"type"`
	Category    string      `gorm:"not null;default:'general'" json:"category"`
	IsPublic    bool        `gorm:"not null;default:false" json:"isPublic"`
	UpdatedBy   *uuid.UUID  `gorm:"type:uuid" json:"updatedBy,omitempty"`
}
