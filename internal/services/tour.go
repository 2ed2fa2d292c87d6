package services

import (
	"context"
	"fmt"
	"math"
	"mime/multipart"
	"strings"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/google/uuid"
)

type TourRepository interface {
	Create(ctx context.Context, t *models.Tour) error
	Update(ctx context.Context, t *models.Tour) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tour, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tour, error)
	Search(ctx context.Context, filter TourFilter) ([]models.Tour, error)
	ListByStatus(ctx context.Context, status models.TourStatus, submittedOnly bool) ([]models.Tour, error)
	ListByCreator(ctx context.Context, userID uuid.UUID) ([]models.Tour, error)
}

// RatingSource yields the approved ratings for a tour.
type RatingSource interface {
	ApprovedRatings(ctx context.Context, tourID uuid.UUID) ([]int, error)
}

// ImageStore saves uploaded images and returns their public URL.
type ImageStore interface {
	UploadImage(ctx context.Context, file *multipart.FileHeader, folder string) (string, error)
}

type TourNotifier interface {
	TourSubmitted(ctx context.Context, t *models.Tour)
	TourModerated(ctx context.Context, t *models.Tour, approved bool, reason string)
}

// TourFilter narrows the public catalog. Empty fields do not filter.
type TourFilter struct {
	Search     string
	MinPrice   *float64
	MaxPrice   *float64
	Difficulty string
	Location   string
	Featured   *bool
	Page
}

// TourDetail is a tour with its approved-review rating summary.
type TourDetail struct {
	models.Tour
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

type TourService struct {
	repo     TourRepository
	ratings  RatingSource
	images   ImageStore
	notifier TourNotifier
	audit    AdminAuditor
}

func NewTourService(repo TourRepository, ratings RatingSource, images ImageStore, notifier TourNotifier, audit AdminAuditor) *TourService {
	return &TourService{repo: repo, ratings: ratings, images: images, notifier: notifier, audit: audit}
}

// List returns Active tours ordered featured first, newest next.
func (s *TourService) List(ctx context.Context, filter TourFilter) ([]models.Tour, error) {
	if strings.EqualFold(filter.Difficulty, "all") {
		filter.Difficulty = ""
	}
	if strings.EqualFold(filter.Location, "all") {
		filter.Location = ""
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Page = filter.Page.Normalize(50, 100)
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, invalid("minPrice", "minPrice cannot exceed maxPrice")
	}
	return s.repo.Search(ctx, filter)
}

func (s *TourService) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*TourDetail, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsActive() && !includeInactive {
		return nil, ErrNotFound
	}

	ratings, err := s.ratings.ApprovedRatings(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	avg, count := SummarizeRatings(ratings)
	return &TourDetail{Tour: *t, AverageRating: avg, ReviewCount: count}, nil
}

// SummarizeRatings returns the mean rounded to one decimal and the count; 0 when empty.
func SummarizeRatings(ratings []int) (float64, int) {
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*10) / 10, len(ratings)
}

// TourInput is the create/update payload for a tour.
type TourInput struct {
	Name           string                `json:"name" binding:"required,notblank"`
	Title          string                `json:"title"`
	Description    string                `json:"description" binding:"required,notblank"`
	Location       string                `json:"location" binding:"required,notblank"`
	Duration       int                   `json:"duration" binding:"required,gt=0"`
	PricePerPerson float64               `json:"pricePerPerson" binding:"required,gt=0"`
	Category       string                `json:"category"`
	Difficulty     string                `json:"difficulty"`
	MaxGroupSize   int                   `json:"maxGroupSize" binding:"required,gt=0"`
	ImageURL       string                `json:"imageUrl" binding:"omitempty,url"`
	Images         []string              `json:"images"`
	StartDates     []string              `json:"startDates"`
	Included       []string              `json:"included"`
	NotIncluded    []string              `json:"notIncluded"`
	Itinerary      []models.ItineraryDay `json:"itinerary"`
	Featured       bool                  `json:"featured"`
}

func (in *TourInput) apply(t *models.Tour) {
	t.Name = strings.TrimSpace(in.Name)
	t.Title = strings.TrimSpace(in.Title)
	if t.Title == "" {
		t.Title = t.Name
	}
	t.Description = in.Description
	t.Location = strings.TrimSpace(in.Location)
	t.Duration = in.Duration
	t.PricePerPerson = in.PricePerPerson
	t.Category = in.Category
	t.Difficulty = in.Difficulty
	t.MaxGroupSize = in.MaxGroupSize
	t.ImageURL = in.ImageURL
	t.Images = nonNil(in.Images)
	t.StartDates = nonNil(in.StartDates)
	t.Included = nonNil(in.Included)
	t.NotIncluded = nonNil(in.NotIncluded)
	t.Itinerary = in.Itinerary
	if t.Itinerary == nil {
		t.Itinerary = []models.ItineraryDay{}
	}
	t.Featured = in.Featured
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Submit stores a user-proposed tour as Inactive until an admin approves it.
func (s *TourService) Submit(ctx context.Context, userID uuid.UUID, in TourInput) (*models.Tour, error) {
	t := &models.Tour{Status: models.TourStatusInactive, CreatedBy: &userID}
	in.apply(t)
	t.Featured = false

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create tour: %w", err)
	}
	s.notifier.TourSubmitted(ctx, t)
	return t, nil
}

func (s *TourService) ListByCreator(ctx context.Context, userID uuid.UUID) ([]models.Tour, error) {
	return s.repo.ListByCreator(ctx, userID)
}

// AdminList returns tours in any status, or only the given one.
func (s *TourService) AdminList(ctx context.Context, status models.TourStatus) ([]models.Tour, error) {
	return s.repo.ListByStatus(ctx, status, false)
}

// ListPending returns user-submitted tours awaiting approval.
func (s *TourService) ListPending(ctx context.Context) ([]models.Tour, error) {
	return s.repo.ListByStatus(ctx, models.TourStatusInactive, true)
}

func (s *TourService) Create(ctx context.Context, adminID uuid.UUID, in TourInput) (*models.Tour, error) {
	t := &models.Tour{Status: models.TourStatusActive, CreatedBy: &adminID}
	in.apply(t)

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create tour: %w", err)
	}
	s.audit.LogAdmin(ctx, adminID, "Created tour "+t.DisplayTitle(), "tour", t.ID.String())
	return t, nil
}

func (s *TourService) Update(ctx context.Context, adminID, id uuid.UUID, in TourInput) (*models.Tour, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(t)

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update tour: %w", err)
	}
	s.audit.LogAdmin(ctx, adminID, "Updated tour "+t.DisplayTitle(), "tour", t.ID.String())
	return t, nil
}

// Deactivate hides a tour from the catalog. Tours are never hard-deleted
// because bookings and reviews reference them.
func (s *TourService) Deactivate(ctx context.Context, adminID, id uuid.UUID) (*models.Tour, error) {
	return s.setStatus(ctx, adminID, id, models.TourStatusInactive, "Deactivated tour ")
}

func (s *TourService) setStatus(ctx context.Context, adminID, id uuid.UUID, status models.TourStatus, action string) (*models.Tour, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Status = status
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update tour status: %w", err)
	}
	s.audit.LogAdmin(ctx, adminID, action+t.DisplayTitle(), "tour", t.ID.String())
	return t, nil
}

// Moderate approves (Active) or rejects (Inactive) a tour and notifies its creator.
func (s *TourService) Moderate(ctx context.Context, adminID, id uuid.UUID, action, reason string) (*models.Tour, error) {
	var (
		status models.TourStatus
		label  string
	)
	switch action {
	case "approve":
		status, label = models.TourStatusActive, "Approved tour "
	case "reject":
		status, label = models.TourStatusInactive, "Rejected tour "
	default:
		return nil, invalid("action", "action must be approve or reject")
	}

	t, err := s.setStatus(ctx, adminID, id, status, label)
	if err != nil {
		return nil, err
	}
	s.notifier.TourModerated(ctx, t, status == models.TourStatusActive, reason)
	return t, nil
}

// AddImage uploads an image and appends it to the tour gallery.
func (s *TourService) AddImage(ctx context.Context, adminID, id uuid.UUID, file *multipart.FileHeader) (*models.Tour, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.images.UploadImage(ctx, file, "tours/"+id.String())
	if err != nil {
		return nil, err
	}
	t.Images = append(t.Images, url)
	if t.ImageURL == "" {
		t.ImageURL = url
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update tour images: %w", err)
	}
	s.audit.LogAdmin(ctx, adminID, "Added image to tour "+t.DisplayTitle(), "tour", t.ID.String())
	return t, nil
}
