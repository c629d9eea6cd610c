package admin

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"rateMyStore/domain"
	psqlRepo "rateMyStore/internal/repository/postgres"
	"rateMyStore/pkg/utils"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
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

func newService(db *gorm.DB) *adminService {
	return NewAdminService(
		psqlRepo.NewUserRepository(db),
		psqlRepo.NewStoreRepository(db),
		psqlRepo.NewRatingRepository(db),
		validator.New(),
	)
}

func TestCreateUserIsPreVerified(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, &domain.User{
		Name:     "New Admin",
		Email:    "admin@example.com",
		Password: "supersecret",
		Role:     domain.RoleSystemAdministrator,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if !created.EmailVerified {
		t.Error("admin-created account should be pre-verified")
	}
	if created.Password != "" {
		t.Error("password must not be returned")
	}

	var stored domain.User
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if stored.Password == "supersecret" {
		t.Error("password stored in plaintext")
	}
	if !utils.CheckPassword("supersecret", stored.Password) {
		t.Error("stored hash does not match the password")
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)

	_, err := svc.CreateUser(context.Background(), &domain.User{
		Name:     "Nobody",
		Email:    "nobody@example.com",
		Password: "supersecret",
		Role:     "superuser",
	})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("create with unknown role = %v, want ErrInvalidArgument", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	user := domain.User{
		Name:     "First",
		Email:    "dup@example.com",
		Password: "supersecret",
		Role:     domain.RoleNormalUser,
	}
	if _, err := svc.CreateUser(ctx, &user); err != nil {
		t.Fatalf("failed to create first user: %v", err)
	}

	_, err := svc.CreateUser(ctx, &domain.User{
		Name:     "Second",
		Email:    "dup@example.com",
		Password: "supersecret",
		Role:     domain.RoleNormalUser,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate email = %v, want ErrConflict", err)
	}
}

func TestCreateStore(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner, err := svc.CreateUser(ctx, &domain.User{
		Name:     "Store Owner",
		Email:    "owner@example.com",
		Password: "supersecret",
		Role:     domain.RoleStoreOwner,
	})
	if err != nil {
		t.Fatalf("failed to create owner: %v", err)
	}

	store, err := svc.CreateStore(ctx, &domain.Store{
		OwnerID: owner.ID,
		Name:    "Corner Shop",
		Email:   "shop@example.com",
		Address: "1 Main St",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if !store.IsActive {
		t.Error("new store should be active")
	}
	if store.AverageRating != 0 || store.TotalRatings != 0 {
		t.Errorf("new store aggregate = (%v, %d), want (0, 0)", store.AverageRating, store.TotalRatings)
	}
}

func TestCreateStoreOwnerChecks(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	_, err := svc.CreateStore(ctx, &domain.Store{OwnerID: 12345, Name: "Ghost", Email: "ghost@example.com"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing owner = %v, want ErrNotFound", err)
	}

	normal, err := svc.CreateUser(ctx, &domain.User{
		Name:     "Not Owner",
		Email:    "normal@example.com",
		Password: "supersecret",
		Role:     domain.RoleNormalUser,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	_, err = svc.CreateStore(ctx, &domain.Store{OwnerID: normal.ID, Name: "Wrong", Email: "wrong@example.com"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("owner with wrong role = %v, want ErrInvalidArgument", err)
	}
}

func TestListUsersFilters(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	seed := []struct {
		name, email, role string
	}{
		{"Alice Admin", "alice@example.com", domain.RoleSystemAdministrator},
		{"Bob Owner", "bob@example.com", domain.RoleStoreOwner},
		{"Carol Owner", "carol@example.com", domain.RoleStoreOwner},
		{"Dave User", "dave@example.com", domain.RoleNormalUser},
	}
	for _, s := range seed {
		if _, err := svc.CreateUser(ctx, &domain.User{
			Name:     s.name,
			Email:    s.email,
			Password: "supersecret",
			Role:     s.role,
		}); err != nil {
			t.Fatalf("failed to seed %s: %v", s.email, err)
		}
	}

	owners, err := svc.ListStoreOwners(ctx)
	if err != nil {
		t.Fatalf("failed to list store owners: %v", err)
	}
	if len(owners) != 2 {
		t.Errorf("store owners = %d, want 2", len(owners))
	}
	for _, u := range owners {
		if u.Password != "" {
			t.Error("listing leaked a password hash")
		}
	}

	byName, err := svc.ListUsers(ctx, psqlRepo.UserFilter{Name: "alice"})
	if err != nil {
		t.Fatalf("failed to filter by name: %v", err)
	}
	if len(byName) != 1 || byName[0].Email != "alice@example.com" {
		t.Errorf("name filter returned %d users", len(byName))
	}
}

func TestGetUserDetailsIncludesStores(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner, err := svc.CreateUser(ctx, &domain.User{
		Name:     "Store Owner",
		Email:    "owner@example.com",
		Password: "supersecret",
		Role:     domain.RoleStoreOwner,
	})
	if err != nil {
		t.Fatalf("failed to create owner: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.CreateStore(ctx, &domain.Store{
			OwnerID: owner.ID,
			Name:    fmt.Sprintf("Store %d", i),
			Email:   fmt.Sprintf("store%d@example.com", i),
		}); err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
	}

	details, err := svc.GetUserDetails(ctx, owner.ID)
	if err != nil {
		t.Fatalf("failed to get details: %v", err)
	}
	if len(details.Stores) != 2 {
		t.Errorf("owned stores = %d, want 2", len(details.Stores))
	}

	if _, err := svc.GetUserDetails(ctx, 99999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing user = %v, want ErrNotFound", err)
	}
}

func TestUpdateUserRole(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, &domain.User{
		Name:     "Promotee",
		Email:    "promotee@example.com",
		Password: "supersecret",
		Role:     domain.RoleNormalUser,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if err := svc.UpdateUserRole(ctx, user.ID, domain.RoleStoreOwner); err != nil {
		t.Fatalf("failed to update role: %v", err)
	}

	var stored domain.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if stored.Role != domain.RoleStoreOwner {
		t.Errorf("role = %q, want store_owner", stored.Role)
	}

	if err := svc.UpdateUserRole(ctx, user.ID, "root"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("invalid role = %v, want ErrInvalidArgument", err)
	}
	if err := svc.UpdateUserRole(ctx, 99999, domain.RoleNormalUser); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing user = %v, want ErrNotFound", err)
	}
}

func TestDeleteUser(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	actor := domain.Principal{ID: 1000, Role: domain.RoleSystemAdministrator}

	user, err := svc.CreateUser(ctx, &domain.User{
		Name:     "Doomed User",
		Email:    "doomed@example.com",
		Password: "supersecret",
		Role:     domain.RoleNormalUser,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if err := svc.DeleteUser(ctx, actor, user.ID); err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}

	if _, err := svc.GetUserDetails(ctx, user.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted user lookup = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteUser(ctx, actor, user.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}

	self := domain.Principal{ID: actor.ID, Role: domain.RoleSystemAdministrator}
	if err := svc.DeleteUser(ctx, self, actor.ID); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("self delete = %v, want ErrInvalidArgument", err)
	}
}

func TestListStoresIncludesInactive(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner, err := svc.CreateUser(ctx, &domain.User{
		Name:     "Store Owner",
		Email:    "owner@example.com",
		Password: "supersecret",
		Role:     domain.RoleStoreOwner,
	})
	if err != nil {
		t.Fatalf("failed to create owner: %v", err)
	}

	active := domain.Store{OwnerID: owner.ID, Name: "Open", Email: "open@example.com", IsActive: true}
	inactive := domain.Store{OwnerID: owner.ID, Name: "Closed", Email: "closed@example.com", IsActive: false}
	for _, st := range []*domain.Store{&active, &inactive} {
		if err := db.Create(st).Error; err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}
	}

	stores, pagination, err := svc.ListStores(ctx, domain.StoreFilter{}, domain.StoreSort{}, 1, 10)
	if err != nil {
		t.Fatalf("failed to list stores: %v", err)
	}
	if pagination.TotalItems != 2 || len(stores) != 2 {
		t.Errorf("admin listing = %d stores, want 2", len(stores))
	}
}

func TestGetStats(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	owner, err := svc.CreateUser(ctx, &domain.User{
		Name:     "Store Owner",
		Email:    "owner@example.com",
		Password: "supersecret",
		Role:     domain.RoleStoreOwner,
	})
	if err != nil {
		t.Fatalf("failed to create owner: %v", err)
	}
	rater, err := svc.CreateUser(ctx, &domain.User{
		Name:     "Rater",
		Email:    "rater@example.com",
		Password: "supersecret",
		Role:     domain.RoleNormalUser,
	})
	if err != nil {
		t.Fatalf("failed to create rater: %v", err)
	}

	store, err := svc.CreateStore(ctx, &domain.Store{
		OwnerID: owner.ID,
		Name:    "Corner Shop",
		Email:   "shop@example.com",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	rating := domain.Rating{UserID: rater.ID, StoreID: store.ID, Value: 4}
	if err := db.Create(&rating).Error; err != nil {
		t.Fatalf("failed to seed rating: %v", err)
	}

	stats, err := svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}

	want := Stats{TotalUsers: 2, ActiveUsers: 2, TotalStores: 1, ActiveStores: 1, TotalRatings: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}
