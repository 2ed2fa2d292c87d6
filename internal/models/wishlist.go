package models

import "github.com/google/uuid"

type Wishlist struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlists_user_tour" json:"userId"`
	TourID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlists_user_tour" json:"tourId"`
	Tour   *Tour     `json:"tour,omitempty"`
}
