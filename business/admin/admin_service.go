package admin

import (
	"context"
	"errors"
	"fmt"

	"rateMyStore/domain"
	"rateMyStore/internal/repository/postgres"
	"rateMyStore/pkg/logger"
	"rateMyStore/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindAll(ctx context.Context, filter postgres.UserFilter) ([]domain.User, error)
	UpdateRole(ctx context.Context, id uint, role string) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (total int64, active int64, err error)
}

// StoreRepository contract interface
type StoreRepository interface {
	Create(ctx context.Context, store *domain.Store) error
	FindByID(ctx context.Context, id uint) (domain.Store, error)
	FindByOwner(ctx context.Context, ownerID uint) ([]domain.Store, error)
	ListAll(ctx context.Context, filter domain.StoreFilter, sort domain.StoreSort, page, pageSize int) ([]domain.Store, int64, error)
	Count(ctx context.Context) (total int64, active int64, err error)
}

// RatingRepository contract interface
type RatingRepository interface {
	CountAll(ctx context.Context) (int64, error)
}

// Stats is the platform-wide dashboard payload.
type Stats struct {
	TotalUsers   int64 `json:"totalUsers"`
	ActiveUsers  int64 `json:"activeUsers"`
	TotalStores  int64 `json:"totalStores"`
	ActiveStores int64 `json:"activeStores"`
	TotalRatings int64 `json:"totalRatings"`
}

// UserDetails is a user plus the stores they own, when any.
type UserDetails struct {
	domain.User
	Stores []domain.Store `json:"stores,omitempty"`
}

type adminService struct {
	userRepo   UserRepository
	storeRepo  StoreRepository
	ratingRepo RatingRepository
	validate   *validator.Validate
}

func NewAdminService(userRepo UserRepository, storeRepo StoreRepository, ratingRepo RatingRepository, validate *validator.Validate) *adminService {
	return &adminService{
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
		validate:   validate,
	}
}

// CreateUser provisions an account with any role. Admin-created accounts skip
// the email-verification round trip.
func (s *adminService) CreateUser(ctx context.Context, user *domain.User) (domain.User, error) {
	if !domain.ValidRoles[user.Role] {
		return domain.User{}, fmt.Errorf("invalid role %q: %w", user.Role, domain.ErrInvalidArgument)
	}

	if err := s.validate.Var(user.Email, "required,email"); err != nil {
		return domain.User{}, fmt.Errorf("invalid email format: %w", domain.ErrInvalidArgument)
	}

	if len(user.Password) < 8 {
		return domain.User{}, fmt.Errorf("password must be at least 8 characters: %w", domain.ErrInvalidArgument)
	}

	passwordHash, err := utils.HashPassword(user.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.User{}, domain.ErrInternal
	}

	newUser := domain.User{
		Name:          user.Name,
		Email:         user.Email,
		Password:      string(passwordHash),
		Address:       user.Address,
		Role:          user.Role,
		IsActive:      true,
		EmailVerified: true,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create user", err, "email", user.Email)
		return domain.User{}, err
	}

	newUser.Password = ""
	return newUser, nil
}

// CreateStore registers a store under an existing store_owner account.
func (s *adminService) CreateStore(ctx context.Context, store *domain.Store) (domain.Store, error) {
	owner, err := s.userRepo.FindByID(ctx, store.OwnerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Store{}, fmt.Errorf("owner not found: %w", domain.ErrNotFound)
		}
		return domain.Store{}, err
	}

	if owner.Role != domain.RoleStoreOwner {
		return domain.Store{}, fmt.Errorf("owner must have the store_owner role: %w", domain.ErrInvalidArgument)
	}

	if err := s.validate.Var(store.Email, "required,email"); err != nil {
		return domain.Store{}, fmt.Errorf("invalid email format: %w", domain.ErrInvalidArgument)
	}

	newStore := domain.Store{
		OwnerID:     store.OwnerID,
		Name:        store.Name,
		Email:       store.Email,
		Address:     store.Address,
		Description: store.Description,
		Phone:       store.Phone,
		IsActive:    true,
	}

	if err := s.storeRepo.Create(ctx, &newStore); err != nil {
		logger.Error("Failed to create store", err, "owner_id", store.OwnerID)
		return domain.Store{}, err
	}

	return newStore, nil
}

func (s *adminService) ListUsers(ctx context.Context, filter postgres.UserFilter) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

func (s *adminService) ListStoreOwners(ctx context.Context) ([]domain.User, error) {
	return s.ListUsers(ctx, postgres.UserFilter{Role: domain.RoleStoreOwner})
}

// ListStores returns every store, active or not. Admin views never mask.
func (s *adminService) ListStores(ctx context.Context, filter domain.StoreFilter, sort domain.StoreSort, page, pageSize int) ([]domain.Store, domain.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	stores, total, err := s.storeRepo.ListAll(ctx, filter, sort, page, pageSize)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return stores, domain.Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: pageSize,
	}, nil
}

func (s *adminService) GetStoreByID(ctx context.Context, id uint) (domain.Store, error) {
	return s.storeRepo.FindByID(ctx, id)
}

// GetUserDetails returns the user and, for store owners, their stores.
func (s *adminService) GetUserDetails(ctx context.Context, id uint) (UserDetails, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return UserDetails{}, err
	}
	user.Password = ""

	details := UserDetails{User: user}
	if user.Role == domain.RoleStoreOwner {
		stores, err := s.storeRepo.FindByOwner(ctx, user.ID)
		if err != nil {
			return UserDetails{}, err
		}
		details.Stores = stores
	}

	return details, nil
}

func (s *adminService) UpdateUserRole(ctx context.Context, id uint, role string) error {
	if !domain.ValidRoles[role] {
		return fmt.Errorf("invalid role %q: %w", role, domain.ErrInvalidArgument)
	}

	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return err
	}

	return s.userRepo.UpdateRole(ctx, id, role)
}

// DeleteUser soft-deletes an account. Admins cannot delete themselves.
func (s *adminService) DeleteUser(ctx context.Context, actor domain.Principal, id uint) error {
	if actor.ID == id {
		return fmt.Errorf("cannot delete your own account: %w", domain.ErrInvalidArgument)
	}

	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return err
	}

	return s.userRepo.Delete(ctx, id)
}

func (s *adminService) GetStats(ctx context.Context) (Stats, error) {
	totalUsers, activeUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return Stats{}, err
	}

	totalStores, activeStores, err := s.storeRepo.Count(ctx)
	if err != nil {
		return Stats{}, err
	}

	totalRatings, err := s.ratingRepo.CountAll(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		TotalUsers:   totalUsers,
		ActiveUsers:  activeUsers,
		TotalStores:  totalStores,
		ActiveStores: activeStores,
		TotalRatings: totalRatings,
	}, nil
}
