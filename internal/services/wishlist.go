package services

import (
	"context"
	"errors"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/google/uuid"
)

type WishlistRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error)
	Find(ctx context.Context, userID, tourID uuid.UUID) (*models.Wishlist, error)
	Create(ctx context.Context, w *models.Wishlist) error
	Delete(ctx context.Context, userID, tourID uuid.UUID) error
}

type WishlistService struct {
	repo  WishlistRepository
	tours TourLookup
}

func NewWishlistService(repo WishlistRepository, tours TourLookup) *WishlistService {
	return &WishlistService{repo: repo, tours: tours}
}

func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Add is idempotent: the bool is false when the tour was already saved.
func (s *WishlistService) Add(ctx context.Context, userID, tourID uuid.UUID) (*models.Wishlist, bool, error) {
	tour, err := s.tours.FindByID(ctx, tourID)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.Find(ctx, userID, tourID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	w := &models.Wishlist{UserID: userID, TourID: tourID}
	if err := s.repo.Create(ctx, w); err != nil {
		if errors.Is(err, ErrDuplicate) {
			existing, findErr := s.repo.Find(ctx, userID, tourID)
			return existing, false, findErr
		}
		return nil, false, err
	}
	w.Tour = tour
	return w, true, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, tourID uuid.UUID) error {
	return s.repo.Delete(ctx, userID, tourID)
}
