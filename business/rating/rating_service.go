package rating

import (
	"context"
	"errors"
	"fmt"

	"rateMyStore/domain"
	"rateMyStore/internal/policy"
	"rateMyStore/pkg/logger"
)

// RatingRepository contract interface
type RatingRepository interface {
	FindByUserAndStore(ctx context.Context, userID, storeID uint) (domain.Rating, error)
	Submit(ctx context.Context, rating *domain.Rating) error
	Update(ctx context.Context, rating *domain.Rating) error
	Delete(ctx context.Context, userID, storeID uint) error
	Recalculate(ctx context.Context, storeID uint) error
}

// StoreRepository contract interface
type StoreRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Store, error)
	AllIDs(ctx context.Context) ([]uint, error)
}

type ratingService struct {
	ratingRepo RatingRepository
	storeRepo  StoreRepository
}

func NewRatingService(ratingRepo RatingRepository, storeRepo StoreRepository) *ratingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		storeRepo:  storeRepo,
	}
}

// Submit creates the principal's rating for a store. The row insert and the
// store aggregate recompute commit in one transaction; a concurrent duplicate
// submit loses on the unique index and comes back as domain.ErrConflict.
func (s *ratingService) Submit(ctx context.Context, p domain.Principal, storeID uint, value int, review string) (domain.Rating, error) {
	if !policy.Allows(p.Role, policy.RatingWrite) {
		return domain.Rating{}, fmt.Errorf("only normal users can rate stores: %w", domain.ErrForbidden)
	}

	if value < 1 || value > 5 {
		return domain.Rating{}, fmt.Errorf("rating must be between 1 and 5: %w", domain.ErrInvalidArgument)
	}

	if err := s.ratableStore(ctx, storeID); err != nil {
		return domain.Rating{}, err
	}

	// Pre-check keeps the common double-submit on the fast path; the unique
	// index still closes the race between two concurrent submits.
	if _, err := s.ratingRepo.FindByUserAndStore(ctx, p.ID, storeID); err == nil {
		return domain.Rating{}, fmt.Errorf("store already rated, use update instead: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Rating{}, err
	}

	newRating := domain.Rating{
		UserID:  p.ID,
		StoreID: storeID,
		Value:   value,
		Review:  review,
	}

	if err := s.ratingRepo.Submit(ctx, &newRating); err != nil {
		logger.Error("Failed to submit rating", err, "store_id", storeID)
		return domain.Rating{}, err
	}

	return newRating, nil
}

// Update rewrites the principal's existing rating and recomputes the
// aggregate.
func (s *ratingService) Update(ctx context.Context, p domain.Principal, storeID uint, value int, review string) (domain.Rating, error) {
	if !policy.Allows(p.Role, policy.RatingWrite) {
		return domain.Rating{}, fmt.Errorf("only normal users can rate stores: %w", domain.ErrForbidden)
	}

	if value < 1 || value > 5 {
		return domain.Rating{}, fmt.Errorf("rating must be between 1 and 5: %w", domain.ErrInvalidArgument)
	}

	if err := s.ratableStore(ctx, storeID); err != nil {
		return domain.Rating{}, err
	}

	existing, err := s.ratingRepo.FindByUserAndStore(ctx, p.ID, storeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Rating{}, fmt.Errorf("store not rated yet, submit a rating first: %w", domain.ErrNotFound)
		}
		return domain.Rating{}, err
	}

	existing.Value = value
	existing.Review = review

	if err := s.ratingRepo.Update(ctx, &existing); err != nil {
		logger.Error("Failed to update rating", err, "store_id", storeID)
		return domain.Rating{}, err
	}

	return existing, nil
}

// Delete removes the principal's rating for a store and recomputes the
// aggregate.
func (s *ratingService) Delete(ctx context.Context, p domain.Principal, storeID uint) error {
	if !policy.Allows(p.Role, policy.RatingWrite) {
		return fmt.Errorf("only normal users can rate stores: %w", domain.ErrForbidden)
	}

	if err := s.ratableStore(ctx, storeID); err != nil {
		return err
	}

	if err := s.ratingRepo.Delete(ctx, p.ID, storeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("store not rated by this user: %w", domain.ErrNotFound)
		}
		logger.Error("Failed to delete rating", err, "store_id", storeID)
		return err
	}

	return nil
}

// Recalculate redoes a store's aggregate from the rating rows. Safe to run
// repeatedly; callers are gated at the route level (admin only).
func (s *ratingService) Recalculate(ctx context.Context, storeID uint) error {
	if _, err := s.storeRepo.FindByID(ctx, storeID); err != nil {
		return err
	}

	return s.ratingRepo.Recalculate(ctx, storeID)
}

// RecalculateAll repairs every store's aggregate. Returns the number of
// stores touched.
func (s *ratingService) RecalculateAll(ctx context.Context) (int, error) {
	ids, err := s.storeRepo.AllIDs(ctx)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := s.ratingRepo.Recalculate(ctx, id); err != nil {
			return 0, fmt.Errorf("recalculate store %d: %w", id, err)
		}
	}

	return len(ids), nil
}

// ratableStore masks missing and inactive stores as not found so their
// existence does not leak to raters.
func (s *ratingService) ratableStore(ctx context.Context, storeID uint) error {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return err
	}

	if !store.IsActive {
		return fmt.Errorf("store: %w", domain.ErrNotFound)
	}

	return nil
}
