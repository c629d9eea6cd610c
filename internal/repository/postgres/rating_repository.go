package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"rateMyStore/domain"
	"rateMyStore/pkg/metrics"

	"gorm.io/gorm"
)

type RatingRepository struct {
	DB *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{
		DB: db,
	}
}

func (r *RatingRepository) FindByUserAndStore(ctx context.Context, userID, storeID uint) (domain.Rating, error) {
	var rating domain.Rating

	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Rating{}, fmt.Errorf("rating: %w", domain.ErrNotFound)
		}
		return domain.Rating{}, fmt.Errorf("failed to find rating: %w", err)
	}

	return rating, nil
}

// ListByStore returns a store's ratings newest first, each joined with the
// rater's name and email.
func (r *RatingRepository) ListByStore(ctx context.Context, storeID uint) ([]domain.RatingWithUser, error) {
	var ratings []domain.RatingWithUser

	err := r.DB.WithContext(ctx).
		Table("store_ratings").
		Select("store_ratings.*, users.name AS user_name, users.email AS user_email").
		Joins("LEFT JOIN users ON users.id = store_ratings.user_id").
		Where("store_ratings.store_id = ?", storeID).
		Order("store_ratings.created_at DESC").
		Order("store_ratings.id DESC").
		Scan(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}

	return ratings, nil
}

// Submit inserts the rating and recomputes the store aggregate in one
// transaction. A concurrent duplicate loses on the (user_id, store_id)
// unique index and surfaces as domain.ErrConflict.
func (r *RatingRepository) Submit(ctx context.Context, rating *domain.Rating) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rating).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("store already rated by this user: %w", domain.ErrConflict)
			}
			return fmt.Errorf("failed to create rating: %w", err)
		}

		return recomputeAggregate(tx, rating.StoreID)
	})
}

// Update rewrites the rating value and review for an existing (user, store)
// pair and recomputes the aggregate in the same transaction.
func (r *RatingRepository) Update(ctx context.Context, rating *domain.Rating) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Rating{}).
			Where("user_id = ? AND store_id = ?", rating.UserID, rating.StoreID).
			Updates(map[string]interface{}{
				"rating":     rating.Value,
				"review":     rating.Review,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update rating: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("rating: %w", domain.ErrNotFound)
		}

		return recomputeAggregate(tx, rating.StoreID)
	})
}

func (r *RatingRepository) Delete(ctx context.Context, userID, storeID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND store_id = ?", userID, storeID).
			Delete(&domain.Rating{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete rating: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("rating: %w", domain.ErrNotFound)
		}

		return recomputeAggregate(tx, storeID)
	})
}

// Recalculate redoes the full aggregate from the rating rows. Idempotent;
// used for repair and backfill.
func (r *RatingRepository) Recalculate(ctx context.Context, storeID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return recomputeAggregate(tx, storeID)
	})
}

func (r *RatingRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64

	if err := r.DB.WithContext(ctx).Model(&domain.Rating{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count ratings: %w", err)
	}

	return total, nil
}

// recomputeAggregate rewrites the store's cached average and count from the
// full set of rating rows. Running the aggregate over the source of truth
// inside the mutating transaction keeps the cache immune to drift from missed
// incremental updates or partial failures.
func recomputeAggregate(tx *gorm.DB, storeID uint) error {
	start := time.Now()

	var agg struct {
		Avg float64
		Cnt int64
	}
	err := tx.Model(&domain.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS cnt").
		Where("store_id = ?", storeID).
		Scan(&agg).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	// round half up to one decimal
	rounded := math.Floor(agg.Avg*10+0.5) / 10

	err = tx.Model(&domain.Store{}).Where("id = ?", storeID).
		Updates(map[string]interface{}{
			"average_rating": rounded,
			"total_ratings":  agg.Cnt,
			"updated_at":     time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update store aggregate: %w", err)
	}

	metrics.AggregateRecomputeDuration.Observe(time.Since(start).Seconds())
	return nil
}
