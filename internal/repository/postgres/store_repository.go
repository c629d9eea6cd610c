package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rateMyStore/domain"

	"gorm.io/gorm"
)

// Closed mapping of exposed sort fields to columns. Anything else falls back
// to created_at so unvalidated input never reaches query construction.
var storeSortColumns = map[string]string{
	domain.SortByName:          "name",
	domain.SortByAverageRating: "average_rating",
	domain.SortByCreatedAt:     "created_at",
}

type StoreRepository struct {
	DB *gorm.DB
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{
		DB: db,
	}
}

func (r *StoreRepository) Create(ctx context.Context, store *domain.Store) error {
	if err := r.DB.WithContext(ctx).Create(store).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("store email already registered: %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to create store: %w", err)
	}

	return nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id uint) (domain.Store, error) {
	var store domain.Store

	err := r.DB.WithContext(ctx).First(&store, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Store{}, fmt.Errorf("store: %w", domain.ErrNotFound)
		}
		return domain.Store{}, fmt.Errorf("failed to find store: %w", err)
	}

	return store, nil
}

// FindActiveByOwner returns the store owned by the given user, if any.
func (r *StoreRepository) FindActiveByOwner(ctx context.Context, ownerID uint) (domain.Store, error) {
	var store domain.Store

	err := r.DB.WithContext(ctx).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Store{}, fmt.Errorf("store: %w", domain.ErrNotFound)
		}
		return domain.Store{}, fmt.Errorf("failed to find store: %w", err)
	}

	return store, nil
}

// ListActive returns active stores matching the filter, sorted and paginated,
// together with the total match count. Ties on the primary sort key are
// broken by id so page boundaries stay stable.
func (r *StoreRepository) ListActive(ctx context.Context, filter domain.StoreFilter, sort domain.StoreSort, page, pageSize int) ([]domain.Store, int64, error) {
	base := r.DB.WithContext(ctx).Model(&domain.Store{}).Where("is_active = ?", true)
	base = applyStoreFilter(base, filter)

	return listStores(base, sort, page, pageSize)
}

// ListAll is the admin listing: same sorting and pagination, no is_active
// mask.
func (r *StoreRepository) ListAll(ctx context.Context, filter domain.StoreFilter, sort domain.StoreSort, page, pageSize int) ([]domain.Store, int64, error) {
	base := applyStoreFilter(r.DB.WithContext(ctx).Model(&domain.Store{}), filter)

	return listStores(base, sort, page, pageSize)
}

func listStores(base *gorm.DB, sort domain.StoreSort, page, pageSize int) ([]domain.Store, int64, error) {
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count stores: %w", err)
	}

	column, ok := storeSortColumns[sort.Field]
	if !ok {
		column = "created_at"
		sort.Direction = "asc"
	}
	direction := "ASC"
	if strings.EqualFold(sort.Direction, "desc") {
		direction = "DESC"
	}

	var stores []domain.Store
	err := base.Session(&gorm.Session{}).
		Order(fmt.Sprintf("%s %s", column, direction)).
		Order("id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&stores).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stores: %w", err)
	}

	return stores, total, nil
}

func (r *StoreRepository) FindByOwner(ctx context.Context, ownerID uint) ([]domain.Store, error) {
	var stores []domain.Store

	err := r.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&stores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list owner stores: %w", err)
	}

	return stores, nil
}

func (r *StoreRepository) AllIDs(ctx context.Context) ([]uint, error) {
	var ids []uint

	err := r.DB.WithContext(ctx).Model(&domain.Store{}).Order("id ASC").Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to collect store ids: %w", err)
	}

	return ids, nil
}

func (r *StoreRepository) Update(ctx context.Context, store *domain.Store) error {
	result := r.DB.WithContext(ctx).Model(&domain.Store{}).Where("id = ?", store.ID).
		Updates(map[string]interface{}{
			"name":        store.Name,
			"address":     store.Address,
			"description": store.Description,
			"phone":       store.Phone,
			"is_active":   store.IsActive,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update store: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("store: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *StoreRepository) Count(ctx context.Context) (total, active int64, err error) {
	if err = r.DB.WithContext(ctx).Model(&domain.Store{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count stores: %w", err)
	}
	if err = r.DB.WithContext(ctx).Model(&domain.Store{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count active stores: %w", err)
	}

	return total, active, nil
}

func applyStoreFilter(q *gorm.DB, filter domain.StoreFilter) *gorm.DB {
	if filter.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Email != "" {
		q = q.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(filter.Email)+"%")
	}
	if filter.Address != "" {
		q = q.Where("LOWER(address) LIKE ?", "%"+strings.ToLower(filter.Address)+"%")
	}

	return q
}
