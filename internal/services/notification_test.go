package services

import (
	"context"
	"errors"
	"testing"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type memoryNotificationRepository struct {
	created   []*models.Notification
	createErr error
}

func (m *memoryNotificationRepository) Create(_ context.Context, n *models.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	n.ID = uuid.New()
	m.created = append(m.created, n)
	return nil
}

func (m *memoryNotificationRepository) ListAdmin(context.Context, NotificationFilter) ([]models.Notification, int64, error) {
	return nil, 0, nil
}

func (m *memoryNotificationRepository) ListForRecipient(context.Context, uuid.UUID, int) ([]models.Notification, error) {
	return nil, nil
}

func (m *memoryNotificationRepository) MarkRead(context.Context, uuid.UUID, *uuid.UUID) error {
	return nil
}

func (m *memoryNotificationRepository) MarkAllAdminRead(context.Context) (int64, error) {
	return 0, nil
}

func (m *memoryNotificationRepository) Delete(context.Context, uuid.UUID) error { return nil }

func (m *memoryNotificationRepository) DeleteAllAdmin(context.Context) (int64, error) {
	return 0, nil
}

type captureBroadcaster struct {
	roles []string
	users []uuid.UUID
}

func (c *captureBroadcaster) BroadcastToRole(role, _ string, _ interface{}) int {
	c.roles = append(c.roles, role)
	return 1
}

func (c *captureBroadcaster) BroadcastToUser(userID uuid.UUID, _ string, _ interface{}) int {
	c.users = append(c.users, userID)
	return 1
}

type staticToggles map[string]bool

func (s staticToggles) Bool(_ context.Context, key string, def bool) bool {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

func sampleBooking() *models.Booking {
	b := &models.Booking{Base: models.Base{ID: uuid.New()}, TourID: uuid.New(), UserID: uuid.New(), NumberOfPeople: 2, TotalPrice: 300}
	b.TravelerInfo = datatypes.NewJSONType(models.TravelerInfo{FirstName: "Ada", LastName: "L"})
	return b
}

func TestNotificationService_AdminAlertsBroadcast(t *testing.T) {
	repo := &memoryNotificationRepository{}
	hub := &captureBroadcaster{}
	svc := NewNotificationService(repo, hub, staticToggles{})

	svc.BookingChanged(context.Background(), BookingEventCreated, sampleBooking(), "Safari")

	require.Len(t, repo.created, 1)
	n := repo.created[0]
	assert.Equal(t, "New Booking", n.Title)
	assert.Equal(t, models.NotificationTypeBooking, n.Type)
	assert.Nil(t, n.RecipientID)
	assert.Contains(t, n.Message, "Safari")
	assert.Equal(t, []string{string(models.RoleAdmin)}, hub.roles)
}

func TestNotificationService_TogglesSuppressAlerts(t *testing.T) {
	repo := &memoryNotificationRepository{}
	svc := NewNotificationService(repo, &captureBroadcaster{}, staticToggles{
		"newBookingAlerts":     false,
		"paymentFailureAlerts": false,
	})

	svc.BookingChanged(context.Background(), BookingEventCreated, sampleBooking(), "Safari")
	svc.PaymentFailed(context.Background(), uuid.New(), 120, "declined")
	assert.Empty(t, repo.created)

	svc.BookingChanged(context.Background(), BookingEventCanceled, sampleBooking(), "Safari")
	assert.Len(t, repo.created, 1, "cancellations are not gated")
}

func TestNotificationService_TourModeratedAddressesCreator(t *testing.T) {
	repo := &memoryNotificationRepository{}
	hub := &captureBroadcaster{}
	svc := NewNotificationService(repo, hub, nil)
	creator := uuid.New()

	svc.TourModerated(context.Background(), &models.Tour{Base: models.Base{ID: uuid.New()}, Name: "Nile Cruise", CreatedBy: &creator}, false, "missing itinerary")

	require.Len(t, repo.created, 1)
	assert.Equal(t, "Tour Rejected", repo.created[0].Title)
	assert.Contains(t, repo.created[0].Message, "missing itinerary")
	assert.Equal(t, &creator, repo.created[0].RecipientID)
	assert.Equal(t, []uuid.UUID{creator}, hub.users)
	assert.Empty(t, hub.roles)
}

func TestNotificationService_BestEffort(t *testing.T) {
	repo := &memoryNotificationRepository{createErr: errors.New("db down")}
	hub := &captureBroadcaster{}
	svc := NewNotificationService(repo, hub, nil)

	assert.NotPanics(t, func() {
		svc.ReviewSubmitted(context.Background(), &models.Review{Rating: 4}, "Safari")
	})
	assert.Empty(t, hub.roles, "nothing is pushed when the insert fails")

	err := svc.Notify(context.Background(), &models.Notification{Title: "x"})
	assert.Error(t, err)
}
