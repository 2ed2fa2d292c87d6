package services

import (
	"context"
	"fmt"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListAdmin(ctx context.Context, filter NotificationFilter) ([]models.Notification, int64, error)
	ListForRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, recipientID *uuid.UUID) error
	MarkAllAdminRead(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllAdmin(ctx context.Context) (int64, error)
}

// Broadcaster pushes live messages to connected websocket clients.
type Broadcaster interface {
	BroadcastToRole(role, msgType string, data interface{}) int
	BroadcastToUser(userID uuid.UUID, msgType string, data interface{}) int
}

// AlertToggles reads the admin alert switches from settings.
type AlertToggles interface {
	Bool(ctx context.Context, key string, def bool) bool
}

type NotificationFilter struct {
	UnreadOnly bool
	Type       string
	Page
}

// NotificationService stores alerts and fans admin alerts out over the websocket hub.
// Delivery is best effort with no retry.
type NotificationService struct {
	repo     NotificationRepository
	hub      Broadcaster
	settings AlertToggles
}

func NewNotificationService(repo NotificationRepository, hub Broadcaster, settings AlertToggles) *NotificationService {
	return &NotificationService{repo: repo, hub: hub, settings: settings}
}

// Notify stores n and pushes it live. A nil RecipientID addresses all admins.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	if n.Priority == "" {
		n.Priority = models.PriorityNormal
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	if s.hub != nil {
		if n.RecipientID == nil {
			s.hub.BroadcastToRole(string(models.RoleAdmin), "notification", n)
		} else {
			s.hub.BroadcastToUser(*n.RecipientID, "notification", n)
		}
	}
	return nil
}

func (s *NotificationService) notifyBestEffort(ctx context.Context, n *models.Notification) {
	if err := s.Notify(ctx, n); err != nil {
		log.Error().Err(err).Str("type", n.Type).Str("title", n.Title).Msg("failed to create notification")
	}
}

func (s *NotificationService) alertEnabled(ctx context.Context, key string) bool {
	if s.settings == nil {
		return true
	}
	return s.settings.Bool(ctx, key, true)
}

// BookingEvent names a booking lifecycle notification.
type BookingEvent string

const (
	BookingEventCreated   BookingEvent = "created"
	BookingEventConfirmed BookingEvent = "confirmed"
	BookingEventCanceled  BookingEvent = "cancelled"
	BookingEventRefunded  BookingEvent = "refunded"
)

var bookingEventText = map[BookingEvent]struct {
	title    string
	verb     string
	priority models.NotificationPriority
}{
	BookingEventCreated:   {"New Booking", "was booked", models.PriorityNormal},
	BookingEventConfirmed: {"Booking Confirmed", "was confirmed", models.PriorityNormal},
	BookingEventCanceled:  {"Booking Cancelled", "was cancelled", models.PriorityHigh},
	BookingEventRefunded:  {"Booking Refunded", "was refunded", models.PriorityHigh},
}

func (s *NotificationService) BookingChanged(ctx context.Context, event BookingEvent, b *models.Booking, tourTitle string) {
	if event == BookingEventCreated && !s.alertEnabled(ctx, "newBookingAlerts") {
		return
	}
	text, ok := bookingEventText[event]
	if !ok {
		return
	}
	traveler := b.Traveler()
	s.notifyBestEffort(ctx, &models.Notification{
		Title:             text.title,
		Message:           fmt.Sprintf("%s for %d traveler(s) %s by %s %s ($%.2f)", tourTitle, b.NumberOfPeople, text.verb, traveler.FirstName, traveler.LastName, b.TotalPrice),
		Type:              models.NotificationTypeBooking,
		Priority:          text.priority,
		RelatedEntityType: "booking",
		RelatedEntityID:   b.ID.String(),
		Metadata: map[string]interface{}{
			"event":            string(event),
			"tourId":           b.TourID.String(),
			"userId":           b.UserID.String(),
			"totalPrice":       b.TotalPrice,
			"paymentReference": b.PaymentReference,
		},
	})
}

// PaymentFailed alerts admins of a rejected charge.
func (s *NotificationService) PaymentFailed(ctx context.Context, userID uuid.UUID, amount float64, reason string) {
	if !s.alertEnabled(ctx, "paymentFailureAlerts") {
		return
	}
	s.notifyBestEffort(ctx, &models.Notification{
		Title:             "Payment Failed",
		Message:           fmt.Sprintf("A payment of $%.2f failed: %s", amount, reason),
		Type:              models.NotificationTypePayment,
		Priority:          models.PriorityHigh,
		RelatedEntityType: "user",
		RelatedEntityID:   userID.String(),
		Metadata:          map[string]interface{}{"amount": amount, "reason": reason},
	})
}

func (s *NotificationService) PaymentRefunded(ctx context.Context, b *models.Booking, reason string) {
	s.notifyBestEffort(ctx, &models.Notification{
		Title:             "Payment Refunded",
		Message:           fmt.Sprintf("Payment %s of $%.2f was refunded", b.PaymentReference, b.TotalPrice),
		Type:              models.NotificationTypePayment,
		Priority:          models.PriorityNormal,
		RelatedEntityType: "booking",
		RelatedEntityID:   b.ID.String(),
		Metadata:          map[string]interface{}{"paymentReference": b.PaymentReference, "reason": reason},
	})
}

func (s *NotificationService) ReviewSubmitted(ctx context.Context, r *models.Review, tourTitle string) {
	s.notifyBestEffort(ctx, &models.Notification{
		Title:             "New Review",
		Message:           fmt.Sprintf("A %d-star review of %s is awaiting moderation", r.Rating, tourTitle),
		Type:              models.NotificationTypeReview,
		Priority:          models.PriorityLow,
		RelatedEntityType: "review",
		RelatedEntityID:   r.ID.String(),
	})
}

func (s *NotificationService) TourSubmitted(ctx context.Context, t *models.Tour) {
	s.notifyBestEffort(ctx, &models.Notification{
		Title:             "Tour Submitted",
		Message:           fmt.Sprintf("%s in %s was submitted for approval", t.DisplayTitle(), t.Location),
		Type:              models.NotificationTypeTour,
		Priority:          models.PriorityNormal,
		RelatedEntityType: "tour",
		RelatedEntityID:   t.ID.String(),
	})
}

// TourModerated tells the tour's creator about an approve or reject decision.
func (s *NotificationService) TourModerated(ctx context.Context, t *models.Tour, approved bool, reason string) {
	if t.CreatedBy == nil {
		return
	}
	title, message := "Tour Approved", fmt.Sprintf("Your tour %s is now live", t.DisplayTitle())
	if !approved {
		title, message = "Tour Rejected", fmt.Sprintf("Your tour %s was not approved", t.DisplayTitle())
		if reason != "" {
			message += ": " + reason
		}
	}
	recipient := *t.CreatedBy
	s.notifyBestEffort(ctx, &models.Notification{
		Title:             title,
		Message:           message,
		Type:              models.NotificationTypeTour,
		Priority:          models.PriorityNormal,
		RecipientID:       &recipient,
		RelatedEntityType: "tour",
		RelatedEntityID:   t.ID.String(),
	})
}

func (s *NotificationService) ListAdmin(ctx context.Context, filter NotificationFilter) ([]models.Notification, int64, error) {
	filter.Page = filter.Page.Normalize(50, 200)
	return s.repo.ListAdmin(ctx, filter)
}

func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	page := Page{Limit: limit}.Normalize(50, 200)
	return s.repo.ListForRecipient(ctx, userID, page.Limit)
}

// MarkRead marks one notification read. A non-nil recipient restricts it to their own rows.
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID, recipientID *uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, recipientID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	return s.repo.MarkAllAdminRead(ctx)
}

func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *NotificationService) ClearAll(ctx context.Context) (int64, error) {
	return s.repo.DeleteAllAdmin(ctx)
}
