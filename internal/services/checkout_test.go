package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paymentRefPattern = regexp.MustCompile(`^PAY-\d+-[a-z0-9]{9}$`)

type mockCheckoutStore struct {
	createFn   func(ctx context.Context, bookings []*models.Booking, redemption *CouponRedemption) error
	stored     []*models.Booking
	redemption *CouponRedemption
}

func (m *mockCheckoutStore) CreatePaidBookings(ctx context.Context, bookings []*models.Booking, redemption *CouponRedemption) error {
	if m.createFn != nil {
		if err := m.createFn(ctx, bookings, redemption); err != nil {
			return err
		}
	}
	m.stored = append(m.stored, bookings...)
	m.redemption = redemption
	return nil
}

type mockConfirmationMailer struct {
	sent []string
}

func (m *mockConfirmationMailer) Enabled() bool { return true }

func (m *mockConfirmationMailer) SendBookingConfirmationEmail(to, _, reference string, _ []utils.BookingLine, _ float64) error {
	m.sent = append(m.sent, to+" "+reference)
	return nil
}

type checkoutFixture struct {
	svc     *CheckoutService
	store   *mockCheckoutStore
	gateway *mockGateway
	rec     *recorder
	mailer  *mockConfirmationMailer
	coupons *mockCouponRepository
	tours   []models.Tour
	user    *models.User
}

func newCheckoutFixture(t *testing.T, tours ...models.Tour) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		store:   &mockCheckoutStore{},
		gateway: &mockGateway{},
		rec:     &recorder{},
		mailer:  &mockConfirmationMailer{},
		coupons: &mockCouponRepository{},
		tours:   tours,
		user:    &models.User{Base: models.Base{ID: uuid.New()}, Email: "ada@example.com", Name: "Ada Lovelace"},
	}
	f.svc = NewCheckoutService(CheckoutDeps{
		Store:    f.store,
		Tours:    tourStore(tours...),
		Users:    newMockUserRepository(f.user),
		Coupons:  NewCouponService(f.coupons, f.rec),
		Gateway:  f.gateway,
		Notifier: f.rec,
		System:   f.rec,
		Mailer:   f.mailer,
		Currency: "usd",
	})
	return f
}

func validCard() *CardDetails {
	return &CardDetails{Number: "4242 4242 4242 4242", Expiry: "12/30", CVV: "123"}
}

func cartLine(tour models.Tour, people int) CartItem {
	return CartItem{TourID: tour.ID, NumberOfPeople: people, Date: models.Date{Time: time.Now().Add(30 * 24 * time.Hour)}, TotalPrice: 1}
}

func TestCheckout_CreatesOnePaidBookingPerLine(t *testing.T) {
	a, b := activeTour(100, 10), activeTour(250, 4)
	f := newCheckoutFixture(t, a, b)

	res, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutRequest{
		CartItems:   []CartItem{cartLine(a, 2), cartLine(b, 3)},
		CardDetails: validCard(),
	})

	require.NoError(t, err)
	require.Len(t, res.Bookings, 2)
	assert.Regexp(t, paymentRefPattern, res.PaymentReference)
	assert.Equal(t, 950.0, res.Subtotal)
	assert.Equal(t, 950.0, res.Total)
	for _, bk := range res.Bookings {
		assert.Equal(t, models.BookingStatusConfirmed, bk.Status)
		assert.Equal(t, models.PaymentStatusPaid, bk.PaymentStatus)
		assert.Equal(t, res.PaymentReference, bk.PaymentReference)
		assert.Equal(t, PaymentMethodCard, bk.PaymentMethod)
		assert.NotNil(t, bk.PaymentDate)
	}
	assert.Equal(t, 200.0, res.Bookings[0].TotalPrice, "client price is ignored")
	assert.Len(t, f.store.stored, 2)
	assert.Len(t, f.gateway.charges, 1)
	assert.Equal(t, 950.0, f.gateway.charges[0].Amount)
	assert.Equal(t, []BookingEvent{BookingEventCreated, BookingEventCreated}, f.rec.bookingEvents)
	assert.Len(t, f.mailer.sent, 1)
}

func TestCheckout_DefaultTravelerFromAccount(t *testing.T) {
	tour := activeTour(100, 10)
	f := newCheckoutFixture(t, tour)

	res, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutRequest{
		CartItems:   []CartItem{cartLine(tour, 1)},
		CardDetails: validCard(),
	})

	require.NoError(t, err)
	traveler := res.Bookings[0].Traveler()
	assert.Equal(t, "Ada", traveler.FirstName)
	assert.Equal(t, "Lovelace", traveler.LastName)
	assert.Equal(t, "ada@example.com", traveler.Email)
}

func TestCheckout_DeclinedPaymentCreatesNothing(t *testing.T) {
	tour := activeTour(100, 10)
	f := newCheckoutFixture(t, tour)
	f.gateway.chargeFn = func(context.Context, ChargeRequest) (*ChargeResult, error) {
		return nil, ErrPaymentDeclined
	}

	res, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutRequest{
		CartItems:   []CartItem{cartLine(tour, 2)},
		CardDetails: validCard(),
	})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrPaymentDeclined))
	assert.Empty(t, f.store.stored)
	assert.Equal(t, 1, f.rec.paymentFails)
	assert.Equal(t, []string{models.SystemLogPaymentFailure}, f.rec.systemLogs)
	assert.Empty(t, f.mailer.sent)
}

func TestCheckout_RejectsBadInputBeforeCharging(t *testing.T) {
	tour := activeTour(100, 4)
	inactive := activeTour(100, 4)
	inactive.Status = models.TourStatusInactive

	tests := []struct {
		name    string
		req     CheckoutRequest
		wantErr error
	}{
		{"empty cart", CheckoutRequest{CardDetails: validCard()}, ErrEmptyCart},
		{"short card", CheckoutRequest{CartItems: []CartItem{cartLine(tour, 1)}, CardDetails: &CardDetails{Number: "4242", Expiry: "12/30", CVV: "123"}}, ErrInvalidCard},
		{"missing card", CheckoutRequest{CartItems: []CartItem{cartLine(tour, 1)}}, ErrInvalidCard},
		{"over group size", CheckoutRequest{CartItems: []CartItem{cartLine(tour, 5)}, CardDetails: validCard()}, ErrInvalidInput},
		{"inactive tour", CheckoutRequest{CartItems: []CartItem{cartLine(inactive, 1)}, CardDetails: validCard()}, ErrTourUnavailable},
		{"unknown tour", CheckoutRequest{CartItems: []CartItem{{TourID: uuid.New(), NumberOfPeople: 1, Date: models.Date{Time: time.Now()}}}, CardDetails: validCard()}, ErrTourUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(t, tour, inactive)
			_, err := f.svc.Checkout(context.Background(), f.user.ID, tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Empty(t, f.gateway.charges)
		})
	}
}

func TestCheckout_CouponDiscountApportioned(t *testing.T) {
	a, b := activeTour(100, 10), activeTour(100, 10)
	f := newCheckoutFixture(t, a, b)
	coupon := &models.Coupon{
		Base:          models.Base{ID: uuid.New()},
		Code:          "SAVE10",
		DiscountType:  models.DiscountFixed,
		DiscountValue: 10,
		IsActive:      true,
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidUntil:    time.Now().Add(time.Hour),
	}
	f.coupons.findByCodeFn = func(_ context.Context, code string) (*models.Coupon, error) {
		require.Equal(t, "SAVE10", code)
		return coupon, nil
	}

	res, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutRequest{
		CartItems:   []CartItem{cartLine(a, 1), cartLine(b, 2)},
		CardDetails: validCard(),
		CouponCode:  " save10 ",
	})

	require.NoError(t, err)
	assert.Equal(t, 300.0, res.Subtotal)
	assert.Equal(t, 10.0, res.Discount)
	assert.Equal(t, 290.0, res.Total)
	assert.Equal(t, 3.33, res.Bookings[0].DiscountAmount)
	assert.Equal(t, 6.67, res.Bookings[1].DiscountAmount)
	assert.Equal(t, 290.0, utils.RoundCents(res.Bookings[0].TotalPrice+res.Bookings[1].TotalPrice))
	require.NotNil(t, f.store.redemption)
	assert.Equal(t, coupon.ID, f.store.redemption.CouponID)
	assert.Equal(t, &coupon.ID, res.Bookings[0].CouponID)
}

func TestCheckout_StoreFailureRefundsPayment(t *testing.T) {
	tour := activeTour(100, 10)
	f := newCheckoutFixture(t, tour)
	f.store.createFn = func(context.Context, []*models.Booking, *CouponRedemption) error {
		return errors.New("connection reset")
	}

	_, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutRequest{
		CartItems:   []CartItem{cartLine(tour, 1)},
		CardDetails: validCard(),
	})

	var ppe *PostPaymentError
	require.ErrorAs(t, err, &ppe)
	assert.Regexp(t, paymentRefPattern, ppe.PaymentReference)
	assert.True(t, ppe.Refunded)
	assert.Equal(t, []string{ppe.PaymentReference}, f.gateway.refunds)
	assert.Equal(t, []string{models.SystemLogError}, f.rec.systemLogs)
	assert.Empty(t, f.rec.bookingEvents)
}

func TestCheckout_ExhaustedCouponInsideTransaction(t *testing.T) {
	tour := activeTour(100, 10)
	f := newCheckoutFixture(t, tour)
	f.coupons.findByCodeFn = func(context.Context, string) (*models.Coupon, error) {
		return &models.Coupon{
			Base: models.Base{ID: uuid.New()}, Code: "ONCE", DiscountType: models.DiscountPercentage, DiscountValue: 10,
			IsActive: true, UsageLimit: intPtr(1), ValidFrom: time.Now().Add(-time.Hour), ValidUntil: time.Now().Add(time.Hour),
		}, nil
	}
	f.store.createFn = func(context.Context, []*models.Booking, *CouponRedemption) error {
		return ErrCouponExhausted
	}

	_, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutRequest{
		CartItems:   []CartItem{cartLine(tour, 1)},
		CardDetails: validCard(),
		CouponCode:  "ONCE",
	})

	require.ErrorIs(t, err, ErrCouponExhausted)
	assert.Len(t, f.gateway.refunds, 1)
}

func TestCheckout_ZeroTotalSkipsGateway(t *testing.T) {
	tour := activeTour(40, 10)
	f := newCheckoutFixture(t, tour)
	f.coupons.findByCodeFn = func(context.Context, string) (*models.Coupon, error) {
		return &models.Coupon{
			Base: models.Base{ID: uuid.New()}, Code: "FREE", DiscountType: models.DiscountPercentage, DiscountValue: 100,
			IsActive: true, ValidFrom: time.Now().Add(-time.Hour), ValidUntil: time.Now().Add(time.Hour),
		}, nil
	}

	res, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutRequest{
		CartItems:   []CartItem{cartLine(tour, 1)},
		CardDetails: validCard(),
		CouponCode:  "FREE",
	})

	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Total)
	assert.Empty(t, f.gateway.charges)
	assert.Regexp(t, paymentRefPattern, res.PaymentReference)
}

func TestCreatePaymentIntent(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.CreatePaymentIntent(context.Background(), f.user.ID, PaymentIntentRequest{Amount: 49})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.CreatePaymentIntent(context.Background(), f.user.ID, PaymentIntentRequest{Amount: 80, CardDetails: &CardDetails{Number: "1", Expiry: "1", CVV: "1"}})
	assert.ErrorIs(t, err, ErrInvalidCard)

	res, err := f.svc.CreatePaymentIntent(context.Background(), f.user.ID, PaymentIntentRequest{Amount: 80, CardDetails: validCard()})
	require.NoError(t, err)
	assert.Equal(t, "validated", res.Status)
	assert.Equal(t, "usd", res.Currency)
	assert.Equal(t, 80.0, res.Amount)
}
