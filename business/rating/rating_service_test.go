package rating

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"rateMyStore/domain"
	psqlRepo "rateMyStore/internal/repository/postgres"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.User{}, &domain.Store{}, &domain.Rating{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) domain.User {
	t.Helper()

	user := domain.User{
		Name:     "Test User",
		Email:    email,
		Password: "hashed",
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedStore(t *testing.T, db *gorm.DB, ownerID uint, email string, active bool) domain.Store {
	t.Helper()

	store := domain.Store{
		OwnerID:  ownerID,
		Name:     "Test Store",
		Email:    email,
		Address:  "1 Main St",
		IsActive: active,
	}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	return store
}

func storeAggregate(t *testing.T, db *gorm.DB, storeID uint) (float64, int) {
	t.Helper()

	var store domain.Store
	if err := db.First(&store, storeID).Error; err != nil {
		t.Fatalf("failed to reload store: %v", err)
	}
	return store.AverageRating, store.TotalRatings
}

func newService(db *gorm.DB) *ratingService {
	return NewRatingService(psqlRepo.NewRatingRepository(db), psqlRepo.NewStoreRepository(db))
}

func TestSubmitRecomputesAggregate(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com", domain.RoleStoreOwner)
	store := seedStore(t, db, owner.ID, "store@example.com", true)

	values := []int{4, 5, 3}
	for i, v := range values {
		rater := seedUser(t, db, string(rune('a'+i))+"@example.com", domain.RoleNormalUser)
		p := domain.Principal{ID: rater.ID, Role: rater.Role}
		if _, err := svc.Submit(ctx, p, store.ID, v, "nice"); err != nil {
			t.Fatalf("failed to submit rating %d: %v", v, err)
		}
	}

	avg, count := storeAggregate(t, db, store.ID)
	if avg != 4.0 {
		t.Errorf("average = %v, want 4.0", avg)
	}
	if count != 3 {
		t.Errorf("total ratings = %d, want 3", count)
	}
}

func TestSubmitRoundsHalfUp(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com", domain.RoleStoreOwner)

	cases := []struct {
		values []int
		want   float64
	}{
		// 4.333... truncates to 4.3 under any rounding mode.
		{[]int{4, 4, 5}, 4.3},
		// 4.25 sits exactly on the half boundary: half-up gives 4.3,
		// half-even would give 4.2.
		{[]int{4, 4, 4, 5}, 4.3},
		// 3.25 is another half boundary: 3.3, not the truncated 3.2.
		{[]int{3, 3, 3, 4}, 3.3},
	}

	for ci, tc := range cases {
		store := seedStore(t, db, owner.ID, fmt.Sprintf("store%d@example.com", ci), true)
		for i, v := range tc.values {
			rater := seedUser(t, db, fmt.Sprintf("rater%d-%d@example.com", ci, i), domain.RoleNormalUser)
			p := domain.Principal{ID: rater.ID, Role: rater.Role}
			if _, err := svc.Submit(ctx, p, store.ID, v, ""); err != nil {
				t.Fatalf("case %d: failed to submit rating: %v", ci, err)
			}
		}

		avg, _ := storeAggregate(t, db, store.ID)
		if avg != tc.want {
			t.Errorf("case %d: average = %v, want %v", ci, avg, tc.want)
		}
	}
}

func TestUpdateReplacesRating(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com", domain.RoleStoreOwner)
	store := seedStore(t, db, owner.ID, "store@example.com", true)
	rater := seedUser(t, db, "rater@example.com", domain.RoleNormalUser)
	p := domain.Principal{ID: rater.ID, Role: rater.Role}

	if _, err := svc.Submit(ctx, p, store.ID, 5, "great"); err != nil {
		t.Fatalf("failed to submit: %v", err)
	}

	updated, err := svc.Update(ctx, p, store.ID, 3, "changed my mind")
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if updated.Value != 3 {
		t.Errorf("updated value = %d, want 3", updated.Value)
	}

	avg, count := storeAggregate(t, db, store.ID)
	if avg != 3.0 {
		t.Errorf("average = %v, want 3.0", avg)
	}
	if count != 1 {
		t.Errorf("total ratings = %d, want 1", count)
	}
}

func TestUpdateWithoutExistingRating(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com", domain.RoleStoreOwner)
	store := seedStore(t, db, owner.ID, "store@example.com", true)
	rater := seedUser(t, db, "rater@example.com", domain.RoleNormalUser)
	p := domain.Principal{ID: rater.ID, Role: rater.Role}

	_, err := svc.Update(ctx, p, store.ID, 3, "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("update without existing rating = %v, want ErrNotFound", err)
	}
}

func TestDuplicateSubmitConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com", domain.RoleStoreOwner)
	store := seedStore(t, db, owner.ID, "store@example.com", true)
	rater := seedUser(t, db, "rater@example.com", domain.RoleNormalUser)
	p := domain.Principal{ID: rater.ID, Role: rater.Role}

	if _, err := svc.Submit(ctx, p, store.ID, 5, "first"); err != nil {
		t.Fatalf("failed to submit: %v", err)
	}

	_, err := svc.Submit(ctx, p, store.ID, 1, "second")
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate submit = %v, want ErrConflict", err)
	}

	// first rating untouched
	rating, err := psqlRepo.NewRatingRepository(db).FindByUserAndStore(ctx, rater.ID, store.ID)
	if err != nil {
		t.Fatalf("failed to reload rating: %v", err)
	}
	if rating.Value != 5 {
		t.Errorf("rating value = %d, want 5", rating.Value)
	}

	avg, count := storeAggregate(t, db, store.ID)
	if avg != 5.0 || count != 1 {
		t.Errorf("aggregate = (%v, %d), want (5.0, 1)", avg, count)
	}
}

func TestSubmitValueOutOfRange(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com", domain.RoleStoreOwner)
	store := seedStore(t, db, owner.ID, "store@example.com", true)
	rater := seedUser(t, db, "rater@example.com", domain.RoleNormalUser)
	p := domain.Principal{ID: rater.ID, Role: rater.Role}

	for _, v := range []int{0, 6, -1} {
		if _, err := svc.Submit(ctx, p, store.ID, v, ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("submit(%d) = %v, want ErrInvalidArgument", v, err)
		}
	}
}

func TestSubmitMasksInactiveStore(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com", domain.RoleStoreOwner)
	store := seedStore(t, db, owner.ID, "store@example.com", false)
	rater := seedUser(t, db, "rater@example.com", domain.RoleNormalUser)
	p := domain.Principal{ID: rater.ID, Role: rater.Role}

	_, err := svc.Submit(ctx, p, store.ID, 4, "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("submit to inactive store = %v, want ErrNotFound", err)
	}
	if errors.Is(err, domain.ErrForbidden) {
		t.Error("inactive store must not leak as ErrForbidden")
	}
}

func TestNonNormalUserCannotRate(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com", domain.RoleStoreOwner)
	store := seedStore(t, db, owner.ID, "store@example.com", true)

	for _, role := range []string{domain.RoleStoreOwner, domain.RoleSystemAdministrator} {
		p := domain.Principal{ID: owner.ID, Role: role}
		if _, err := svc.Submit(ctx, p, store.ID, 4, ""); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("submit as %s = %v, want ErrForbidden", role, err)
		}
	}
}

func TestDeleteEmptiesAggregate(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com", domain.RoleStoreOwner)
	store := seedStore(t, db, owner.ID, "store@example.com", true)
	rater := seedUser(t, db, "rater@example.com", domain.RoleNormalUser)
	p := domain.Principal{ID: rater.ID, Role: rater.Role}

	if _, err := svc.Submit(ctx, p, store.ID, 4, ""); err != nil {
		t.Fatalf("failed to submit: %v", err)
	}

	if err := svc.Delete(ctx, p, store.ID); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}

	avg, count := storeAggregate(t, db, store.ID)
	if avg != 0 || count != 0 {
		t.Errorf("aggregate after delete = (%v, %d), want (0, 0)", avg, count)
	}

	if err := svc.Delete(ctx, p, store.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com", domain.RoleStoreOwner)
	store := seedStore(t, db, owner.ID, "store@example.com", true)
	rater := seedUser(t, db, "rater@example.com", domain.RoleNormalUser)
	p := domain.Principal{ID: rater.ID, Role: rater.Role}

	if _, err := svc.Submit(ctx, p, store.ID, 4, ""); err != nil {
		t.Fatalf("failed to submit: %v", err)
	}

	// Drift the cached aggregate, then repair it.
	if err := db.Model(&domain.Store{}).Where("id = ?", store.ID).
		Updates(map[string]interface{}{"average_rating": 1.0, "total_ratings": 99}).Error; err != nil {
		t.Fatalf("failed to drift aggregate: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.Recalculate(ctx, store.ID); err != nil {
			t.Fatalf("failed to recalculate: %v", err)
		}
	}

	avg, count := storeAggregate(t, db, store.ID)
	if avg != 4.0 || count != 1 {
		t.Errorf("aggregate after recalculate = (%v, %d), want (4.0, 1)", avg, count)
	}
}

func TestRecalculateAll(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com", domain.RoleStoreOwner)
	first := seedStore(t, db, owner.ID, "first@example.com", true)
	second := seedStore(t, db, owner.ID, "second@example.com", true)

	rater := seedUser(t, db, "rater@example.com", domain.RoleNormalUser)
	p := domain.Principal{ID: rater.ID, Role: rater.Role}
	if _, err := svc.Submit(ctx, p, first.ID, 2, ""); err != nil {
		t.Fatalf("failed to submit: %v", err)
	}

	count, err := svc.RecalculateAll(ctx)
	if err != nil {
		t.Fatalf("failed to recalculate all: %v", err)
	}
	if count != 2 {
		t.Errorf("stores touched = %d, want 2", count)
	}

	avg, _ := storeAggregate(t, db, first.ID)
	if avg != 2.0 {
		t.Errorf("first store average = %v, want 2.0", avg)
	}
	avg, total := storeAggregate(t, db, second.ID)
	if avg != 0 || total != 0 {
		t.Errorf("second store aggregate = (%v, %d), want (0, 0)", avg, total)
	}
}
