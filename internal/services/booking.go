package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// CancellationWindow is the minimum lead time for a self-service cancellation.
const CancellationWindow = 24 * time.Hour

type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]models.Booking, int64, error)
	UpdateStatus(ctx context.Context, b *models.Booking) error
	ListPendingPayments(ctx context.Context) ([]models.Booking, error)
}

type BookingNotifier interface {
	BookingChanged(ctx context.Context, event BookingEvent, b *models.Booking, tourTitle string)
	PaymentRefunded(ctx context.Context, b *models.Booking, reason string)
}

type CancellationMailer interface {
	Enabled() bool
	SendBookingCanceledEmail(to, name, tourTitle string) error
}

type BookingFilter struct {
	Status        models.BookingStatus
	PaymentStatus models.PaymentStatus
	Search        string
	Page
}

type BookingService struct {
	repo     BookingRepository
	tours    TourLookup
	gateway  PaymentGateway
	notifier BookingNotifier
	audit    AdminAuditor
	mailer   CancellationMailer
	now      func() time.Time
}

func NewBookingService(repo BookingRepository, tours TourLookup, gateway PaymentGateway, notifier BookingNotifier, audit AdminAuditor, mailer CancellationMailer) *BookingService {
	return &BookingService{
		repo:     repo,
		tours:    tours,
		gateway:  gateway,
		notifier: notifier,
		audit:    audit,
		mailer:   mailer,
		now:      time.Now,
	}
}

// ValidateTraveler requires a lead traveler name and a valid email.
func ValidateTraveler(t models.TravelerInfo) error {
	if strings.TrimSpace(t.FirstName) == "" || strings.TrimSpace(t.LastName) == "" {
		return invalid("travelerInfo", "traveler first and last name are required")
	}
	if _, err := mail.ParseAddress(t.Email); err != nil {
		return invalid("travelerInfo.email", "a valid traveler email is required")
	}
	return nil
}

type CreateBookingInput struct {
	TourID         uuid.UUID           `json:"tourId" binding:"required"`
	NumberOfPeople int                 `json:"numberOfPeople" binding:"required,gt=0"`
	StartDate      models.Date         `json:"startDate"`
	TravelerInfo   models.TravelerInfo `json:"travelerInfo"`
}

// Create stores an unpaid Pending booking priced from the catalog.
func (s *BookingService) Create(ctx context.Context, userID uuid.UUID, in CreateBookingInput) (*models.Booking, error) {
	if err := ValidateTraveler(in.TravelerInfo); err != nil {
		return nil, err
	}
	tour, err := s.tours.FindByID(ctx, in.TourID)
	if err != nil {
		return nil, err
	}
	if !tour.IsActive() {
		return nil, ErrTourUnavailable
	}
	if err := checkHeadcount(tour, in.NumberOfPeople); err != nil {
		return nil, err
	}
	now := s.now()
	if !in.StartDate.After(now) {
		return nil, invalid("startDate", "startDate must be in the future")
	}

	b := &models.Booking{
		TourID:         tour.ID,
		UserID:         userID,
		NumberOfPeople: in.NumberOfPeople,
		TotalPrice:     utils.RoundCents(tour.PricePerPerson * float64(in.NumberOfPeople)),
		BookingDate:    now,
		StartDate:      in.StartDate.Time,
		Status:         models.BookingStatusPending,
		PaymentStatus:  models.PaymentStatusPending,
	}
	b.TravelerInfo = datatypes.NewJSONType(in.TravelerInfo)

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	s.notifier.BookingChanged(ctx, BookingEventCreated, b, tour.DisplayTitle())
	b.Tour = tour
	return b, nil
}

func checkHeadcount(t *models.Tour, people int) error {
	if people < 1 {
		return invalid("numberOfPeople", "numberOfPeople must be at least 1")
	}
	if t.MaxGroupSize > 0 && people > t.MaxGroupSize {
		return invalid("numberOfPeople", "%s allows at most %d travelers", t.DisplayTitle(), t.MaxGroupSize)
	}
	return nil
}

// List returns the caller's bookings, or every booking for an admin.
func (s *BookingService) List(ctx context.Context, caller Principal) ([]models.Booking, error) {
	if caller.IsAdmin() {
		bookings, _, err := s.repo.List(ctx, BookingFilter{Page: Page{Limit: 500}})
		return bookings, err
	}
	return s.repo.ListByUser(ctx, caller.UserID)
}

// Get returns a booking visible to the caller.
func (s *BookingService) Get(ctx context.Context, caller Principal, id uuid.UUID) (*models.Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return b, nil
}

// Cancel is the owner's self-service cancellation; the row is kept with status Canceled.
func (s *BookingService) Cancel(ctx context.Context, userID, id uuid.UUID) (*models.Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	if b.Status == models.BookingStatusCanceled {
		return nil, ErrAlreadyCanceled
	}
	if b.StartDate.Sub(s.now()) < CancellationWindow {
		return nil, ErrCancelWindow
	}
	if !b.Status.CanTransitionTo(models.BookingStatusCanceled) {
		return nil, ErrInvalidTransition
	}

	b.Status = models.BookingStatusCanceled
	if err := s.repo.UpdateStatus(ctx, b); err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	title := tourTitle(b)
	s.notifier.BookingChanged(ctx, BookingEventCanceled, b, title)
	s.sendCancellation(b, title)
	return b, nil
}

func (s *BookingService) sendCancellation(b *models.Booking, title string) {
	if s.mailer == nil || !s.mailer.Enabled() {
		return
	}
	t := b.Traveler()
	if err := s.mailer.SendBookingCanceledEmail(t.Email, strings.TrimSpace(t.FirstName+" "+t.LastName), title); err != nil {
		log.Warn().Err(err).Str("booking_id", b.ID.String()).Msg("failed to send cancellation email")
	}
}

func tourTitle(b *models.Booking) string {
	if b.Tour != nil {
		return b.Tour.DisplayTitle()
	}
	return "tour"
}

func (s *BookingService) AdminList(ctx context.Context, filter BookingFilter) ([]models.Booking, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, invalid("status", "invalid booking status %q", filter.Status)
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return nil, 0, invalid("paymentStatus", "invalid payment status %q", filter.PaymentStatus)
	}
	filter.Page = filter.Page.Normalize(50, 200)
	return s.repo.List(ctx, filter)
}

func (s *BookingService) AdminGet(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.repo.FindByID(ctx, id)
}

// StatusUpdate carries an admin change on either axis; nil fields are left alone.
type StatusUpdate struct {
	Status        *models.BookingStatus `json:"status"`
	PaymentStatus *models.PaymentStatus `json:"paymentStatus"`
}

// AdminUpdateStatus applies status and payment-status changes through their transition tables.
func (s *BookingService) AdminUpdateStatus(ctx context.Context, adminID, id uuid.UUID, upd StatusUpdate) (*models.Booking, error) {
	if upd.Status == nil && upd.PaymentStatus == nil {
		return nil, invalid("status", "status or paymentStatus is required")
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var actions []string
	var event BookingEvent
	if upd.Status != nil && *upd.Status != b.Status {
		next := *upd.Status
		if !next.Valid() {
			return nil, invalid("status", "invalid booking status %q", next)
		}
		if !b.Status.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, b.Status, next)
		}
		b.Status = next
		actions = append(actions, "Updated booking status to "+string(next))
		switch next {
		case models.BookingStatusConfirmed:
			event = BookingEventConfirmed
		case models.BookingStatusCanceled:
			event = BookingEventCanceled
		}
	}
	if upd.PaymentStatus != nil && *upd.PaymentStatus != b.PaymentStatus {
		next := *upd.PaymentStatus
		if !next.Valid() {
			return nil, invalid("paymentStatus", "invalid payment status %q", next)
		}
		if !b.PaymentStatus.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w: payment %s to %s", ErrInvalidTransition, b.PaymentStatus, next)
		}
		b.PaymentStatus = next
		if next == models.PaymentStatusPaid {
			now := s.now()
			b.PaymentDate = &now
		}
		actions = append(actions, "Updated payment status to "+string(next))
	}

	if len(actions) == 0 {
		return b, nil
	}
	if err := s.repo.UpdateStatus(ctx, b); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	for _, a := range actions {
		s.audit.LogAdmin(ctx, adminID, a, "booking", b.ID.String())
	}
	if event != "" {
		s.notifier.BookingChanged(ctx, event, b, tourTitle(b))
	}
	return b, nil
}

// ListPayments returns bookings with their payment columns, optionally by payment status.
func (s *BookingService) ListPayments(ctx context.Context, status models.PaymentStatus, page Page) ([]models.Booking, int64, error) {
	return s.AdminList(ctx, BookingFilter{PaymentStatus: status, Page: page})
}

// Refund returns a Paid booking's money through the gateway and cancels it.
// Zero-total bookings are marked refunded without calling the gateway.
func (s *BookingService) Refund(ctx context.Context, adminID, id uuid.UUID, reason string) (*models.Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch b.PaymentStatus {
	case models.PaymentStatusRefunded:
		return nil, ErrAlreadyRefunded
	case models.PaymentStatusPaid:
	default:
		return nil, ErrNotPaid
	}
	if b.PaymentReference == "" {
		return nil, invalid("paymentReference", "booking has no payment reference")
	}

	// A fully discounted order never reached the gateway, so there is nothing to return.
	if b.TotalPrice <= 0 {
		log.Info().Str("booking_id", b.ID.String()).Msg("zero-total booking refunded without gateway call")
	} else if err := s.gateway.Refund(ctx, b.PaymentReference, b.TotalPrice); err != nil {
		log.Error().Err(err).Str("booking_id", b.ID.String()).Str("reference", b.PaymentReference).Msg("refund failed")
		return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}

	b.PaymentStatus = models.PaymentStatusRefunded
	b.Status = models.BookingStatusCanceled
	if err := s.repo.UpdateStatus(ctx, b); err != nil {
		return nil, fmt.Errorf("mark booking refunded: %w", err)
	}

	action := "Refunded payment " + b.PaymentReference
	if reason != "" {
		action += ": " + reason
	}
	s.audit.LogAdmin(ctx, adminID, action, "booking", b.ID.String())
	s.notifier.PaymentRefunded(ctx, b, reason)
	s.notifier.BookingChanged(ctx, BookingEventRefunded, b, tourTitle(b))
	return b, nil
}

type SyncResult struct {
	Checked     int      `json:"checked"`
	SyncedCount int      `json:"syncedCount"`
	Errors      []string `json:"errors,omitempty"`
}

// SyncPayments reconciles Pending bookings with the provider's state.
func (s *BookingService) SyncPayments(ctx context.Context, adminID uuid.UUID) (*SyncResult, error) {
	pending, err := s.repo.ListPendingPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending payments: %w", err)
	}

	res := &SyncResult{Checked: len(pending)}
	for i := range pending {
		b := &pending[i]
		state, err := s.gateway.Status(ctx, b.PaymentReference)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", b.ID, err))
			continue
		}

		switch state {
		case PaymentStateSucceeded:
			now := s.now()
			b.PaymentStatus = models.PaymentStatusPaid
			b.PaymentDate = &now
			if b.Status == models.BookingStatusPending {
				b.Status = models.BookingStatusConfirmed
			}
		case PaymentStateCanceled:
			b.PaymentStatus = models.PaymentStatusFailed
		default:
			continue
		}

		if err := s.repo.UpdateStatus(ctx, b); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", b.ID, err))
			continue
		}
		res.SyncedCount++
	}

	s.audit.LogAdmin(ctx, adminID, fmt.Sprintf("Synced %d of %d pending payments", res.SyncedCount, res.Checked), "payment", "")
	return res, nil
}
