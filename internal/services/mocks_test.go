package services

import (
	"context"
	"sync"
	"time"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/pkg/utils"
	"github.com/google/uuid"
)

type mockTourRepository struct {
	createFn        func(ctx context.Context, t *models.Tour) error
	updateFn        func(ctx context.Context, t *models.Tour) error
	findByIDFn      func(ctx context.Context, id uuid.UUID) (*models.Tour, error)
	findByIDsFn     func(ctx context.Context, ids []uuid.UUID) ([]models.Tour, error)
	searchFn        func(ctx context.Context, filter TourFilter) ([]models.Tour, error)
	listByStatusFn  func(ctx context.Context, status models.TourStatus, submittedOnly bool) ([]models.Tour, error)
	listByCreatorFn func(ctx context.Context, userID uuid.UUID) ([]models.Tour, error)
}

func (m *mockTourRepository) Create(ctx context.Context, t *models.Tour) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (m *mockTourRepository) Update(ctx context.Context, t *models.Tour) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, t)
	}
	return nil
}

func (m *mockTourRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tour, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *mockTourRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tour, error) {
	if m.findByIDsFn != nil {
		return m.findByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockTourRepository) Search(ctx context.Context, filter TourFilter) ([]models.Tour, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, filter)
	}
	return []models.Tour{}, nil
}

func (m *mockTourRepository) ListByStatus(ctx context.Context, status models.TourStatus, submittedOnly bool) ([]models.Tour, error) {
	if m.listByStatusFn != nil {
		return m.listByStatusFn(ctx, status, submittedOnly)
	}
	return []models.Tour{}, nil
}

func (m *mockTourRepository) ListByCreator(ctx context.Context, userID uuid.UUID) ([]models.Tour, error) {
	if m.listByCreatorFn != nil {
		return m.listByCreatorFn(ctx, userID)
	}
	return []models.Tour{}, nil
}

// tourStore is a mockTourRepository backed by a fixed set of tours.
func tourStore(tours ...models.Tour) *mockTourRepository {
	byID := make(map[uuid.UUID]models.Tour, len(tours))
	for _, t := range tours {
		byID[t.ID] = t
	}
	return &mockTourRepository{
		findByIDFn: func(_ context.Context, id uuid.UUID) (*models.Tour, error) {
			t, ok := byID[id]
			if !ok {
				return nil, ErrNotFound
			}
			return &t, nil
		},
		findByIDsFn: func(_ context.Context, ids []uuid.UUID) ([]models.Tour, error) {
			out := []models.Tour{}
			for _, id := range ids {
				if t, ok := byID[id]; ok {
					out = append(out, t)
				}
			}
			return out, nil
		},
	}
}

func activeTour(price float64, maxGroup int) models.Tour {
	return models.Tour{
		Base:           models.Base{ID: uuid.New()},
		Name:           "Serengeti Safari",
		Title:          "Serengeti Safari",
		Location:       "Tanzania",
		PricePerPerson: price,
		MaxGroupSize:   maxGroup,
		Status:         models.TourStatusActive,
	}
}

type mockBookingRepository struct {
	createFn              func(ctx context.Context, b *models.Booking) error
	findByIDFn            func(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	listByUserFn          func(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
	listFn                func(ctx context.Context, filter BookingFilter) ([]models.Booking, int64, error)
	updateStatusFn        func(ctx context.Context, b *models.Booking) error
	listPendingPaymentsFn func(ctx context.Context) ([]models.Booking, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, b *models.Booking) error {
	if m.createFn != nil {
		return m.createFn(ctx, b)
	}
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *mockBookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return []models.Booking{}, nil
}

func (m *mockBookingRepository) List(ctx context.Context, filter BookingFilter) ([]models.Booking, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return []models.Booking{}, 0, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, b *models.Booking) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, b)
	}
	return nil
}

func (m *mockBookingRepository) ListPendingPayments(ctx context.Context) ([]models.Booking, error) {
	if m.listPendingPaymentsFn != nil {
		return m.listPendingPaymentsFn(ctx)
	}
	return []models.Booking{}, nil
}

type mockGateway struct {
	prepareFn func(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	chargeFn  func(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	refundFn  func(ctx context.Context, reference string, amount float64) error
	statusFn  func(ctx context.Context, reference string) (PaymentState, error)

	mu      sync.Mutex
	charges []ChargeRequest
	refunds []string
}

func (m *mockGateway) PrepareIntent(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if m.prepareFn != nil {
		return m.prepareFn(ctx, req)
	}
	return &ChargeResult{Reference: "PAY-1-abcdefghi", Status: "validated"}, nil
}

func (m *mockGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	m.mu.Lock()
	m.charges = append(m.charges, req)
	m.mu.Unlock()
	if m.chargeFn != nil {
		return m.chargeFn(ctx, req)
	}
	return &ChargeResult{Reference: utils.PaymentReference(time.Now(), nil), Status: string(PaymentStateSucceeded)}, nil
}

func (m *mockGateway) Refund(ctx context.Context, reference string, amount float64) error {
	m.mu.Lock()
	m.refunds = append(m.refunds, reference)
	m.mu.Unlock()
	if m.refundFn != nil {
		return m.refundFn(ctx, reference, amount)
	}
	return nil
}

func (m *mockGateway) Status(ctx context.Context, reference string) (PaymentState, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, reference)
	}
	return PaymentStateSucceeded, nil
}

// recorder captures notifier and audit calls.
type recorder struct {
	mu            sync.Mutex
	bookingEvents []BookingEvent
	paymentFails  int
	refunds       int
	reviews       int
	submitted     int
	moderated     []bool
	adminActions  []string
	systemLogs    []string
}

func (r *recorder) BookingChanged(_ context.Context, event BookingEvent, _ *models.Booking, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookingEvents = append(r.bookingEvents, event)
}

func (r *recorder) PaymentFailed(context.Context, uuid.UUID, float64, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paymentFails++
}

func (r *recorder) PaymentRefunded(context.Context, *models.Booking, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunds++
}

func (r *recorder) ReviewSubmitted(context.Context, *models.Review, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews++
}

func (r *recorder) TourSubmitted(context.Context, *models.Tour) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted++
}

func (r *recorder) TourModerated(_ context.Context, _ *models.Tour, approved bool, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moderated = append(r.moderated, approved)
}

func (r *recorder) LogAdmin(_ context.Context, _ uuid.UUID, action, _, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adminActions = append(r.adminActions, action)
}

func (r *recorder) LogSystem(_ context.Context, logType, _ string, _ map[string]interface{}, _ *uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systemLogs = append(r.systemLogs, logType)
}

type mockCouponRepository struct {
	createFn     func(ctx context.Context, c *models.Coupon) error
	updateFn     func(ctx context.Context, c *models.Coupon) error
	deleteFn     func(ctx context.Context, id uuid.UUID) error
	findByIDFn   func(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	findByCodeFn func(ctx context.Context, code string) (*models.Coupon, error)
	setActiveFn  func(ctx context.Context, id uuid.UUID, active bool) error
}

func (m *mockCouponRepository) Create(ctx context.Context, c *models.Coupon) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	return nil
}

func (m *mockCouponRepository) Update(ctx context.Context, c *models.Coupon) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, c)
	}
	return nil
}

func (m *mockCouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *mockCouponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if m.findByCodeFn != nil {
		return m.findByCodeFn(ctx, code)
	}
	return nil, ErrNotFound
}

func (m *mockCouponRepository) List(context.Context) ([]models.Coupon, error) {
	return []models.Coupon{}, nil
}

func (m *mockCouponRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if m.setActiveFn != nil {
		return m.setActiveFn(ctx, id, active)
	}
	return nil
}

func (m *mockCouponRepository) ListUsage(context.Context, uuid.UUID) ([]models.CouponUsage, error) {
	return []models.CouponUsage{}, nil
}

type mockUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: map[uuid.UUID]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepository) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockUserRepository) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) List(context.Context, UserFilter) ([]models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }
