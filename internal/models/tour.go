package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TourStatus string

const (
	TourStatusActive   TourStatus = "Active"
	TourStatusInactive TourStatus = "Inactive"
)

type ItineraryDay struct {
	Day         int    `json:"day"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Tour struct {
	Base
	Name           string                            `gorm:"not null" json:"name"`
	Title          string                            `gorm:"not null" json:"title"`
	Description    string                            `gorm:"type:text" json:"description"`
	Location       string                            `gorm:"index" json:"location"`
	Duration       int                               `json:"duration"`
	PricePerPerson float64                           `gorm:"type:numeric(10,2);not null" json:"pricePerPerson"`
	Category       string                            `json:"category"`
	Difficulty     string                            `json:"difficulty"`
	MaxGroupSize   int                               `json:"maxGroupSize"`
	ImageURL       string                            `gorm:"column:image_url" json:"imageUrl"`
	Images         datatypes.JSONSlice[string]       `gorm:"type:jsonb" json:"images"`
	Status         TourStatus                        `gorm:"type:text;not null;default:'Active';index" json:"status"`
	StartDates     datatypes.JSONSlice[string]       `gorm:"type:jsonb" json:"startDates"`
	Included       datatypes.JSONSlice[string]       `gorm:"type:jsonb" json:"included"`
	NotIncluded    datatypes.JSONSlice[string]       `gorm:"type:jsonb" json:"notIncluded"`
	Itinerary      datatypes.JSONSlice[ItineraryDay] `gorm:"type:jsonb" json:"itinerary"`
	Featured       bool                              `gorm:"default:false" json:"featured"`
	CreatedBy      *uuid.UUID                        `gorm:"type:uuid" json:"createdBy,omitempty"`
	Creator        *User                             `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

func (t *Tour) IsActive() bool {
	return t.Status == TourStatusActive
}

// DisplayTitle returns the title, falling back to the name.
func (t *Tour) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Name
}
