package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique key is already taken
	ErrDuplicate = errors.New("already exists")

	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrInvalidOTP         = errors.New("invalid or expired code")

	// ErrInvalidInput is matched by every *ValidationError
	ErrInvalidInput = errors.New("invalid input")

	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCard     = errors.New("invalid card details")
	ErrPaymentDeclined = errors.New("payment declined")
	ErrPaymentProvider = errors.New("payment provider error")
	ErrTourUnavailable = errors.New("tour is not available for booking")

	ErrCouponInvalid       = errors.New("invalid coupon code")
	ErrCouponInactive      = errors.New("coupon is not active")
	ErrCouponNotYetValid   = errors.New("coupon is not yet valid")
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrCouponExhausted     = errors.New("coupon usage limit reached")
	ErrCouponMinimum       = errors.New("order does not meet coupon minimum")
	ErrCouponNotApplicable = errors.New("coupon does not apply to these tours")

	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyCanceled   = errors.New("booking is already canceled")
	ErrCancelWindow      = errors.New("cannot cancel within 24 hours of travel date")
	ErrAlreadyRefunded   = errors.New("payment already refunded")
	ErrNotPaid           = errors.New("booking has not been paid")
	ErrRefundFailed      = errors.New("refund failed")

	ErrAlreadyReviewed = errors.New("tour already reviewed")
	ErrSelfAction      = errors.New("admins cannot modify their own account this way")
)

// ValidationError carries a client-facing message for bad input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// PostPaymentError is returned when a charge succeeded but bookings could not be stored.
type PostPaymentError struct {
	PaymentReference string
	Refunded         bool
	Err              error
}

func (e *PostPaymentError) Error() string {
	return fmt.Sprintf("booking creation failed after payment %s: %v", e.PaymentReference, e.Err)
}

func (e *PostPaymentError) Unwrap() error {
	return e.Err
}
