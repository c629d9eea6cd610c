package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"rateMyStore/domain"
	"rateMyStore/internal/policy"
	"rateMyStore/pkg/logger"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// StoreRepository contract interface
type StoreRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Store, error)
	FindActiveByOwner(ctx context.Context, ownerID uint) (domain.Store, error)
	ListActive(ctx context.Context, filter domain.StoreFilter, sort domain.StoreSort, page, pageSize int) ([]domain.Store, int64, error)
	Update(ctx context.Context, store *domain.Store) error
}

// RatingRepository contract interface
type RatingRepository interface {
	FindByUserAndStore(ctx context.Context, userID, storeID uint) (domain.Rating, error)
	ListByStore(ctx context.Context, storeID uint) ([]domain.RatingWithUser, error)
}

type storeService struct {
	storeRepo  StoreRepository
	ratingRepo RatingRepository
}

func NewStoreService(storeRepo StoreRepository, ratingRepo RatingRepository) *storeService {
	return &storeService{
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

// StoreWithUserRating is a single-store view augmented with the caller's own
// rating, when they have one.
type StoreWithUserRating struct {
	Store      domain.Store   `json:"store"`
	UserRating *domain.Rating `json:"userRating"`
}

// StoreWithRatings is the store-owner dashboard payload.
type StoreWithRatings struct {
	domain.Store
	Ratings []domain.RatingWithUser `json:"ratings"`
}

// List serves the store listing: active stores only, filtered, sorted on a
// closed field set with id as tie-break, paginated. Every read resolves
// through the policy table.
func (s *storeService) List(ctx context.Context, p domain.Principal, filter domain.StoreFilter, sort domain.StoreSort, page, pageSize int) ([]domain.Store, domain.Pagination, error) {
	if !policy.Allows(p.Role, policy.StoreRead) {
		return nil, domain.Pagination{}, fmt.Errorf("store browsing not permitted: %w", domain.ErrForbidden)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	stores, total, err := s.storeRepo.ListActive(ctx, filter, sort, page, pageSize)
	if err != nil {
		logger.Error("Failed to list stores", err)
		return nil, domain.Pagination{}, err
	}

	pagination := domain.Pagination{
		CurrentPage:  page,
		TotalPages:   int(math.Ceil(float64(total) / float64(pageSize))),
		TotalItems:   total,
		ItemsPerPage: pageSize,
	}

	return stores, pagination, nil
}

// GetWithUserRating returns a store the principal may see, plus their own
// rating of it if any. Stores the principal may not resolve come back as not
// found, never forbidden.
func (s *storeService) GetWithUserRating(ctx context.Context, p domain.Principal, storeID uint) (StoreWithUserRating, error) {
	st, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return StoreWithUserRating{}, err
	}

	if !policy.CanViewStore(p, st.OwnerID, st.IsActive) {
		return StoreWithUserRating{}, fmt.Errorf("store: %w", domain.ErrNotFound)
	}

	result := StoreWithUserRating{Store: st}

	userRating, err := s.ratingRepo.FindByUserAndStore(ctx, p.ID, storeID)
	if err == nil {
		result.UserRating = &userRating
	} else if !errors.Is(err, domain.ErrNotFound) {
		return StoreWithUserRating{}, err
	}

	return result, nil
}

// ListRatings returns the public ratings of a store the principal may see.
func (s *storeService) ListRatings(ctx context.Context, p domain.Principal, storeID uint) ([]domain.RatingWithUser, error) {
	st, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	if !policy.CanViewStore(p, st.OwnerID, st.IsActive) {
		return nil, fmt.Errorf("store: %w", domain.ErrNotFound)
	}

	return s.ratingRepo.ListByStore(ctx, storeID)
}

// OwnerStore returns the authenticated store owner's own store.
func (s *storeService) OwnerStore(ctx context.Context, p domain.Principal) (domain.Store, error) {
	if p.Role != domain.RoleStoreOwner {
		return domain.Store{}, fmt.Errorf("store owner role required: %w", domain.ErrForbidden)
	}

	st, err := s.storeRepo.FindActiveByOwner(ctx, p.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Store{}, fmt.Errorf("no store found for this owner: %w", domain.ErrNotFound)
		}
		return domain.Store{}, err
	}

	return st, nil
}

// UpdateOwnStore lets the store owner edit their store's presentation
// fields. Empty fields are left as they are.
func (s *storeService) UpdateOwnStore(ctx context.Context, p domain.Principal, changes domain.Store) (domain.Store, error) {
	st, err := s.OwnerStore(ctx, p)
	if err != nil {
		return domain.Store{}, err
	}

	if !policy.CanModifyStore(p, st.OwnerID) {
		return domain.Store{}, fmt.Errorf("store modification not permitted: %w", domain.ErrForbidden)
	}

	if changes.Name != "" {
		st.Name = changes.Name
	}
	if changes.Address != "" {
		st.Address = changes.Address
	}
	if changes.Description != "" {
		st.Description = changes.Description
	}
	if changes.Phone != "" {
		st.Phone = changes.Phone
	}

	if err := s.storeRepo.Update(ctx, &st); err != nil {
		logger.Error("Failed to update store", err, "store_id", st.ID)
		return domain.Store{}, err
	}

	return st, nil
}

// OwnerRatings returns all ratings on the owner's store with rater info.
func (s *storeService) OwnerRatings(ctx context.Context, p domain.Principal) ([]domain.RatingWithUser, error) {
	st, err := s.OwnerStore(ctx, p)
	if err != nil {
		return nil, err
	}

	return s.ratingRepo.ListByStore(ctx, st.ID)
}

// OwnerStoreWithRatings is the dashboard view: the store plus every rating.
func (s *storeService) OwnerStoreWithRatings(ctx context.Context, p domain.Principal) (StoreWithRatings, error) {
	st, err := s.OwnerStore(ctx, p)
	if err != nil {
		return StoreWithRatings{}, err
	}

	ratings, err := s.ratingRepo.ListByStore(ctx, st.ID)
	if err != nil {
		return StoreWithRatings{}, err
	}

	return StoreWithRatings{Store: st, Ratings: ratings}, nil
}
