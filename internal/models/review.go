package models

import "github.com/google/uuid"

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

// Review is unique per (user, tour). Only approved reviews are public.
type Review struct {
	Base
	UserID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_tour" json:"userId"`
	User      *User        `json:"user,omitempty"`
	TourID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_tour;index" json:"tourId"`
	Tour      *Tour        `json:"tour,omitempty"`
	BookingID *uuid.UUID   `gorm:"type:uuid" json:"bookingId,omitempty"`
	Rating    int          `gorm:"not null" json:"rating"`
	Title     string       `json:"title,omitempty"`
	Comment   string       `gorm:"type:text" json:"comment"`
	Status    ReviewStatus `gorm:"type:text;not null;default:'pending';index" json:"status"`
}
