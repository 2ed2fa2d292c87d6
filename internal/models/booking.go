package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCanceled  BookingStatus = "Canceled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCanceled},
	BookingStatusConfirmed: {BookingStatusCanceled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a booking may move from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusFailed   PaymentStatus = "Failed"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusFailed:  {PaymentStatusPending},
	PaymentStatusPaid:    {PaymentStatusRefunded},
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TravelerInfo is the lead traveler recorded on a booking.
type TravelerInfo struct {
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Email               string `json:"email"`
	Phone               string `json:"phone,omitempty"`
	EmergencyContact    string `json:"emergencyContact,omitempty"`
	SpecialRequirements string `json:"specialRequirements,omitempty"`
}

type Booking struct {
	Base
	TourID           uuid.UUID                        `gorm:"type:uuid;not null;index" json:"tourId"`
	Tour             *Tour                            `json:"tour,omitempty"`
	UserID           uuid.UUID                        `gorm:"type:uuid;not null;index" json:"userId"`
	User             *User                            `json:"user,omitempty"`
	NumberOfPeople   int                              `gorm:"not null" json:"numberOfPeople"`
	TotalPrice       float64                          `gorm:"type:numeric(10,2);not null" json:"totalPrice"`
	DiscountAmount   float64                          `gorm:"type:numeric(10,2);default:0" json:"discountAmount"`
	CouponID         *uuid.UUID                       `gorm:"type:uuid" json:"couponId,omitempty"`
	BookingDate      time.Time                        `gorm:"not null" json:"bookingDate"`
	StartDate        time.Time                        `gorm:"not null" json:"startDate"`
	Status           BookingStatus                    `gorm:"type:text;not null;default:'Pending';index" json:"status"`
	PaymentStatus    PaymentStatus                    `gorm:"type:text;not null;default:'Pending';index" json:"paymentStatus"`
	PaymentMethod    string                           `json:"paymentMethod,omitempty"`
	PaymentReference string                           `gorm:"index" json:"paymentReference,omitempty"`
	PaymentDate      *time.Time                       `json:"paymentDate,omitempty"`
	TravelerInfo     datatypes.JSONType[TravelerInfo] `gorm:"type:jsonb" json:"travelerInfo"`
}

// Traveler returns the decoded traveler info.
func (b *Booking) Traveler() TravelerInfo {
	return b.TravelerInfo.Data()
}
