package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// MinimumIntentAmount is the smallest amount accepted by create-payment-intent.
const MinimumIntentAmount = 50

const PaymentMethodCard = "card"

// CartItem is one client-side cart line. TotalPrice is informational only;
// the server always re-prices from the catalog.
type CartItem struct {
	TourID         uuid.UUID   `json:"tourId" binding:"required"`
	TourName       string      `json:"tourName"`
	NumberOfPeople int         `json:"numberOfPeople" binding:"required"`
	Date           models.Date `json:"date"`
	TotalPrice     float64     `json:"totalPrice"`
}

type CheckoutRequest struct {
	CartItems       []CartItem           `json:"cartItems"`
	PaymentMethod   string               `json:"paymentMethod"`
	CardDetails     *CardDetails         `json:"cardDetails"`
	TravelerInfo    *models.TravelerInfo `json:"travelerInfo"`
	CouponCode      string               `json:"couponCode"`
	PaymentMethodID string               `json:"paymentMethodId"`
}

type CheckoutResult struct {
	Bookings         []*models.Booking `json:"bookings"`
	PaymentReference string            `json:"paymentReference"`
	Subtotal         float64           `json:"subtotal"`
	Discount         float64           `json:"discount"`
	Total            float64           `json:"total"`
}

// CouponRedemption is written in the same transaction as the bookings.
type CouponRedemption struct {
	CouponID       uuid.UUID
	UserID         uuid.UUID
	DiscountAmount float64
}

// CheckoutStore persists a paid order atomically. It returns ErrCouponExhausted
// when the guarded usage increment finds the coupon used up.
type CheckoutStore interface {
	CreatePaidBookings(ctx context.Context, bookings []*models.Booking, redemption *CouponRedemption) error
}

type TourBatchLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tour, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type CouponEvaluator interface {
	Evaluate(ctx context.Context, code string, subtotal float64, tourIDs []uuid.UUID) (*CouponQuote, error)
}

type CheckoutNotifier interface {
	BookingChanged(ctx context.Context, event BookingEvent, b *models.Booking, tourTitle string)
	PaymentFailed(ctx context.Context, userID uuid.UUID, amount float64, reason string)
}

type SystemAuditor interface {
	LogSystem(ctx context.Context, logType, message string, metadata map[string]interface{}, userID *uuid.UUID)
}

type ConfirmationMailer interface {
	Enabled() bool
	SendBookingConfirmationEmail(to, name, paymentReference string, lines []utils.BookingLine, total float64) error
}

type CheckoutService struct {
	store    CheckoutStore
	tours    TourBatchLookup
	users    UserLookup
	coupons  CouponEvaluator
	gateway  PaymentGateway
	notifier CheckoutNotifier
	system   SystemAuditor
	mailer   ConfirmationMailer
	currency string
	now      func() time.Time
}

type CheckoutDeps struct {
	Store    CheckoutStore
	Tours    TourBatchLookup
	Users    UserLookup
	Coupons  CouponEvaluator
	Gateway  PaymentGateway
	Notifier CheckoutNotifier
	System   SystemAuditor
	Mailer   ConfirmationMailer
	Currency string
}

func NewCheckoutService(d CheckoutDeps) *CheckoutService {
	return &CheckoutService{
		store:    d.Store,
		tours:    d.Tours,
		users:    d.Users,
		coupons:  d.Coupons,
		gateway:  d.Gateway,
		notifier: d.Notifier,
		system:   d.System,
		mailer:   d.Mailer,
		currency: d.Currency,
		now:      time.Now,
	}
}

type pricedLine struct {
	item CartItem
	tour *models.Tour
	// price before discount
	price float64
}

// Checkout prices the cart, takes one payment for the whole order and stores
// one Confirmed/Paid booking per line sharing the payment reference.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.CartItems) == 0 {
		return nil, ErrEmptyCart
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = PaymentMethodCard
	}
	if method == PaymentMethodCard && req.PaymentMethodID == "" {
		if err := req.CardDetails.Validate(); err != nil {
			return nil, err
		}
	}

	lines, subtotal, err := s.priceCart(ctx, req.CartItems)
	if err != nil {
		return nil, err
	}

	traveler, err := s.travelerFor(ctx, userID, req.TravelerInfo)
	if err != nil {
		return nil, err
	}

	var quote *CouponQuote
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		quote, err = s.coupons.Evaluate(ctx, code, subtotal, cartTourIDs(lines))
		if err != nil {
			return nil, err
		}
	}
	discount := 0.0
	if quote != nil {
		discount = quote.Discount
	}
	total := utils.RoundCents(subtotal - discount)

	reference, err := s.charge(ctx, userID, req, method, total, len(lines))
	if err != nil {
		return nil, err
	}

	now := s.now()
	bookings := buildBookings(lines, userID, method, reference, now, traveler, discount, subtotal)

	var redemption *CouponRedemption
	if quote != nil {
		bookings[0].CouponID = &quote.Coupon.ID
		redemption = &CouponRedemption{CouponID: quote.Coupon.ID, UserID: userID, DiscountAmount: discount}
	}

	if err := s.store.CreatePaidBookings(ctx, bookings, redemption); err != nil {
		return nil, s.compensate(ctx, userID, reference, total, err)
	}

	for _, b := range bookings {
		s.notifier.BookingChanged(ctx, BookingEventCreated, b, tourTitle(b))
	}
	s.sendConfirmation(traveler, reference, bookings, total)

	return &CheckoutResult{
		Bookings:         bookings,
		PaymentReference: reference,
		Subtotal:         subtotal,
		Discount:         discount,
		Total:            total,
	}, nil
}

func (s *CheckoutService) priceCart(ctx context.Context, items []CartItem) ([]pricedLine, float64, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.TourID)
	}
	tours, err := s.tours.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("load cart tours: %w", err)
	}
	byID := make(map[uuid.UUID]*models.Tour, len(tours))
	for i := range tours {
		byID[tours[i].ID] = &tours[i]
	}

	lines := make([]pricedLine, 0, len(items))
	subtotal := 0.0
	for _, it := range items {
		t, ok := byID[it.TourID]
		if !ok || !t.IsActive() {
			return nil, 0, fmt.Errorf("%w: %s", ErrTourUnavailable, it.TourID)
		}
		if err := checkHeadcount(t, it.NumberOfPeople); err != nil {
			return nil, 0, err
		}
		if it.Date.IsZero() {
			return nil, 0, invalid("date", "a travel date is required for %s", t.DisplayTitle())
		}
		price := utils.RoundCents(t.PricePerPerson * float64(it.NumberOfPeople))
		lines = append(lines, pricedLine{item: it, tour: t, price: price})
		subtotal += price
	}
	return lines, utils.RoundCents(subtotal), nil
}

func cartTourIDs(lines []pricedLine) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.tour.ID)
	}
	return ids
}

// travelerFor falls back to the account holder when no traveler is supplied.
func (s *CheckoutService) travelerFor(ctx context.Context, userID uuid.UUID, in *models.TravelerInfo) (models.TravelerInfo, error) {
	if in != nil {
		if err := ValidateTraveler(*in); err != nil {
			return models.TravelerInfo{}, err
		}
		return *in, nil
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.TravelerInfo{}, fmt.Errorf("load user: %w", err)
	}
	first, last := u.SplitName()
	if first == "" {
		first = "Unknown"
	}
	if last == "" {
		last = "User"
	}
	return models.TravelerInfo{FirstName: first, LastName: last, Email: u.Email}, nil
}

func (s *CheckoutService) charge(ctx context.Context, userID uuid.UUID, req CheckoutRequest, method string, total float64, lines int) (string, error) {
	if total <= 0 {
		return utils.PaymentReference(s.now(), nil), nil
	}

	res, err := s.gateway.Charge(ctx, ChargeRequest{
		Amount:          total,
		Currency:        s.currency,
		Card:            req.CardDetails,
		PaymentMethodID: req.PaymentMethodID,
		Description:     fmt.Sprintf("TourHub order (%d tours)", lines),
		Metadata:        map[string]string{"userId": userID.String()},
	})
	if err == nil {
		return res.Reference, nil
	}
	if errors.Is(err, ErrInvalidInput) {
		return "", err
	}

	reason := err.Error()
	log.Warn().Err(err).Str("user_id", userID.String()).Float64("amount", total).Msg("checkout payment rejected")
	s.system.LogSystem(ctx, models.SystemLogPaymentFailure, "Checkout payment failed", map[string]interface{}{
		"amount":        total,
		"paymentMethod": method,
		"reason":        reason,
	}, &userID)
	s.notifier.PaymentFailed(ctx, userID, total, reason)

	if errors.Is(err, ErrPaymentDeclined) {
		return "", err
	}
	return "", fmt.Errorf("%w: %v", ErrPaymentProvider, err)
}

// buildBookings apportions the discount by line value; the last line absorbs rounding.
func buildBookings(lines []pricedLine, userID uuid.UUID, method, reference string, now time.Time, traveler models.TravelerInfo, discount, subtotal float64) []*models.Booking {
	bookings := make([]*models.Booking, 0, len(lines))
	remaining := discount
	for i, l := range lines {
		share := 0.0
		if discount > 0 && subtotal > 0 {
			if i == len(lines)-1 {
				share = utils.RoundCents(remaining)
			} else {
				share = utils.RoundCents(discount * l.price / subtotal)
				remaining -= share
			}
		}
		paidAt := now
		b := &models.Booking{
			TourID:           l.tour.ID,
			Tour:             l.tour,
			UserID:           userID,
			NumberOfPeople:   l.item.NumberOfPeople,
			TotalPrice:       utils.RoundCents(l.price - share),
			DiscountAmount:   share,
			BookingDate:      now,
			StartDate:        l.item.Date.Time,
			Status:           models.BookingStatusConfirmed,
			PaymentStatus:    models.PaymentStatusPaid,
			PaymentMethod:    method,
			PaymentReference: reference,
			PaymentDate:      &paidAt,
		}
		b.TravelerInfo = datatypes.NewJSONType(traveler)
		bookings = append(bookings, b)
	}
	return bookings
}

// compensate refunds a captured payment whose bookings could not be stored.
func (s *CheckoutService) compensate(ctx context.Context, userID uuid.UUID, reference string, total float64, cause error) error {
	refunded := false
	if total > 0 {
		if err := s.gateway.Refund(ctx, reference, total); err != nil {
			log.Error().Err(err).Str("reference", reference).Msg("checkout compensation refund failed")
		} else {
			refunded = true
		}
	} else {
		refunded = true
	}

	log.Error().Err(cause).Str("reference", reference).Bool("refunded", refunded).Msg("checkout booking creation failed")
	s.system.LogSystem(ctx, models.SystemLogError, "Booking creation failed after payment", map[string]interface{}{
		"paymentReference": reference,
		"amount":           total,
		"refunded":         refunded,
		"error":            cause.Error(),
	}, &userID)

	if errors.Is(cause, ErrCouponExhausted) && refunded {
		return ErrCouponExhausted
	}
	return &PostPaymentError{PaymentReference: reference, Refunded: refunded, Err: cause}
}

func (s *CheckoutService) sendConfirmation(t models.TravelerInfo, reference string, bookings []*models.Booking, total float64) {
	if s.mailer == nil || !s.mailer.Enabled() || t.Email == "" {
		return
	}
	lines := make([]utils.BookingLine, 0, len(bookings))
	for _, b := range bookings {
		lines = append(lines, utils.BookingLine{
			TourTitle:      tourTitle(b),
			StartDate:      b.StartDate,
			NumberOfPeople: b.NumberOfPeople,
			Total:          b.TotalPrice,
		})
	}
	name := strings.TrimSpace(t.FirstName + " " + t.LastName)
	if err := s.mailer.SendBookingConfirmationEmail(t.Email, name, reference, lines, total); err != nil {
		log.Warn().Err(err).Str("reference", reference).Msg("failed to send booking confirmation email")
	}
}

type PaymentIntentRequest struct {
	Amount      float64      `json:"amount"`
	CardDetails *CardDetails `json:"cardDetails"`
}

type PaymentIntentResult struct {
	PaymentReference string  `json:"paymentReference"`
	ClientSecret     string  `json:"clientSecret,omitempty"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	Status           string  `json:"status"`
}

// CreatePaymentIntent validates an amount and card ahead of checkout.
func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, userID uuid.UUID, req PaymentIntentRequest) (*PaymentIntentResult, error) {
	if req.Amount < MinimumIntentAmount {
		return nil, invalid("amount", "amount must be at least %d", MinimumIntentAmount)
	}
	if req.CardDetails != nil {
		if err := req.CardDetails.Validate(); err != nil {
			return nil, err
		}
	}
	res, err := s.gateway.PrepareIntent(ctx, ChargeRequest{
		Amount:   req.Amount,
		Currency: s.currency,
		Card:     req.CardDetails,
		Metadata: map[string]string{"userId": userID.String()},
	})
	if err != nil {
		return nil, err
	}
	return &PaymentIntentResult{
		PaymentReference: res.Reference,
		ClientSecret:     res.ClientSecret,
		Amount:           req.Amount,
		Currency:         s.currency,
		Status:           res.Status,
	}, nil
}
