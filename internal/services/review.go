package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/google/uuid"
)

type ReviewRepository interface {
	Create(ctx context.Context, r *models.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ExistsForUserTour(ctx context.Context, userID, tourID uuid.UUID) (bool, error)
	List(ctx context.Context, filter ReviewFilter) ([]models.Review, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	ApprovedRatings(ctx context.Context, tourID uuid.UUID) ([]int, error)
}

type TourLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tour, error)
}

type BookingLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

type ReviewNotifier interface {
	ReviewSubmitted(ctx context.Context, r *models.Review, tourTitle string)
}

// ReviewFilter narrows a review listing. A nil Statuses slice means any status.
type ReviewFilter struct {
	TourID   *uuid.UUID
	UserID   *uuid.UUID
	Statuses []models.ReviewStatus
	Page
}

type ReviewService struct {
	repo     ReviewRepository
	tours    TourLookup
	bookings BookingLookup
	notifier ReviewNotifier
	audit    AdminAuditor
}

func NewReviewService(repo ReviewRepository, tours TourLookup, bookings BookingLookup, notifier ReviewNotifier, audit AdminAuditor) *ReviewService {
	return &ReviewService{repo: repo, tours: tours, bookings: bookings, notifier: notifier, audit: audit}
}

type ReviewInput struct {
	TourID    uuid.UUID  `json:"tourId" binding:"required"`
	Rating    int        `json:"rating" binding:"required"`
	Comment   string     `json:"comment" binding:"required,notblank"`
	Title     string     `json:"title"`
	BookingID *uuid.UUID `json:"bookingId"`
}

// Create stores a pending review. One review per user and tour.
func (s *ReviewService) Create(ctx context.Context, userID uuid.UUID, in ReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, invalid("rating", "rating must be between 1 and 5")
	}

	tour, err := s.tours.FindByID(ctx, in.TourID)
	if err != nil {
		return nil, err
	}

	if in.BookingID != nil {
		b, err := s.bookings.FindByID(ctx, *in.BookingID)
		if errors.Is(err, ErrNotFound) {
			return nil, invalid("bookingId", "booking not found")
		}
		if err != nil {
			return nil, err
		}
		if b.UserID != userID || b.TourID != in.TourID {
			return nil, ErrForbidden
		}
	}

	exists, err := s.repo.ExistsForUserTour(ctx, userID, in.TourID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	r := &models.Review{
		UserID:    userID,
		TourID:    in.TourID,
		BookingID: in.BookingID,
		Rating:    in.Rating,
		Title:     strings.TrimSpace(in.Title),
		Comment:   strings.TrimSpace(in.Comment),
		Status:    models.ReviewStatusPending,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.notifier.ReviewSubmitted(ctx, r, tour.DisplayTitle())
	return r, nil
}

// ListPublic returns approved reviews, plus the viewer's own reviews in any
// status when they filter on their own user id.
func (s *ReviewService) ListPublic(ctx context.Context, tourID, userID *uuid.UUID, viewer *Principal, page Page) ([]models.Review, error) {
	filter := ReviewFilter{
		TourID:   tourID,
		UserID:   userID,
		Statuses: []models.ReviewStatus{models.ReviewStatusApproved},
		Page:     page.Normalize(50, 100),
	}
	if viewer != nil && userID != nil && (*userID == viewer.UserID || viewer.IsAdmin()) {
		filter.Statuses = nil
	}
	return s.repo.List(ctx, filter)
}

func (s *ReviewService) ApprovedRatings(ctx context.Context, tourID uuid.UUID) ([]int, error) {
	return s.repo.ApprovedRatings(ctx, tourID)
}

// Delete lets the author or an admin remove a review.
func (s *ReviewService) Delete(ctx context.Context, caller Principal, id uuid.UUID) error {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if r.UserID != caller.UserID && !caller.IsAdmin() {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if caller.IsAdmin() && r.UserID != caller.UserID {
		s.audit.LogAdmin(ctx, caller.UserID, "Deleted review", "review", id.String())
	}
	return nil
}

func (s *ReviewService) AdminList(ctx context.Context, status models.ReviewStatus, page Page) ([]models.Review, error) {
	filter := ReviewFilter{Page: page.Normalize(50, 200)}
	if status != "" {
		if !status.Valid() {
			return nil, invalid("status", "invalid review status %q", status)
		}
		filter.Statuses = []models.ReviewStatus{status}
	}
	return s.repo.List(ctx, filter)
}

func (s *ReviewService) SetStatus(ctx context.Context, adminID, id uuid.UUID, status models.ReviewStatus) (*models.Review, error) {
	if !status.Valid() {
		return nil, invalid("status", "status must be pending, approved or rejected")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.LogAdmin(ctx, adminID, "Updated review status to "+string(status), "review", id.String())
	return r, nil
}
