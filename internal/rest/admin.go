package rest

import (
	"context"
	"net/http"
	"time"

	"rateMyStore/business/admin"
	"rateMyStore/domain"
	"rateMyStore/internal/repository/postgres"
	"rateMyStore/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AdminService interface {
	CreateUser(ctx context.Context, user *domain.User) (domain.User, error)
	CreateStore(ctx context.Context, store *domain.Store) (domain.Store, error)
	ListUsers(ctx context.Context, filter postgres.UserFilter) ([]domain.User, error)
	ListStoreOwners(ctx context.Context) ([]domain.User, error)
	ListStores(ctx context.Context, filter domain.StoreFilter, sort domain.StoreSort, page, pageSize int) ([]domain.Store, domain.Pagination, error)
	GetStoreByID(ctx context.Context, id uint) (domain.Store, error)
	GetUserDetails(ctx context.Context, id uint) (admin.UserDetails, error)
	UpdateUserRole(ctx context.Context, id uint, role string) error
	DeleteUser(ctx context.Context, actor domain.Principal, id uint) error
	GetStats(ctx context.Context) (admin.Stats, error)
}

type RecalculateService interface {
	RecalculateAll(ctx context.Context) (int, error)
}

type AdminHandler struct {
	adminService AdminService
	recalc       RecalculateService
	validator    *validator.Validate
	timeout      time.Duration
}

func NewAdminHandler(adminService AdminService, recalc RecalculateService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		recalc:       recalc,
		validator:    validator.New(),
		timeout:      30 * time.Second,
	}
}

type AdminCreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Address  string `json:"address" validate:"max=400"`
}

type AdminCreateStoreRequest struct {
	OwnerID     uint   `json:"ownerId" validate:"required"`
	Name        string `json:"name" validate:"required,min=3,max=60"`
	Email       string `json:"email" validate:"required,email"`
	Address     string `json:"address" validate:"required,max=400"`
	Description string `json:"description" validate:"max=500"`
	Phone       string `json:"phone" validate:"max=20"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=normal_user store_owner system_administrator"`
}

func (h *AdminHandler) createUserWithRole(c echo.Context, role string) error {
	var req AdminCreateUserRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate create user request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	user, err := h.adminService.CreateUser(ctx, &domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		Role:     role,
	})
	if err != nil {
		logger.Error("Failed to create user", err, "role", role)
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(user))
}

func (h *AdminHandler) CreateNormalUser(c echo.Context) error {
	return h.createUserWithRole(c, domain.RoleNormalUser)
}

func (h *AdminHandler) CreateAdminUser(c echo.Context) error {
	return h.createUserWithRole(c, domain.RoleSystemAdministrator)
}

func (h *AdminHandler) CreateStoreOwner(c echo.Context) error {
	return h.createUserWithRole(c, domain.RoleStoreOwner)
}

func (h *AdminHandler) CreateStore(c echo.Context) error {
	var req AdminCreateStoreRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate create store request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	newStore, err := h.adminService.CreateStore(ctx, &domain.Store{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		Description: req.Description,
		Phone:       req.Phone,
	})
	if err != nil {
		logger.Error("Failed to create store", err, "owner_id", req.OwnerID)
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(newStore))
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	filter := postgres.UserFilter{
		Role:    c.QueryParam("role"),
		Name:    c.QueryParam("name"),
		Email:   c.QueryParam("email"),
		Address: c.QueryParam("address"),
	}

	users, err := h.adminService.ListUsers(ctx, filter)
	if err != nil {
		logger.Error("Failed to list users", err)
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(users))
}

func (h *AdminHandler) ListStoreOwners(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	owners, err := h.adminService.ListStoreOwners(ctx)
	if err != nil {
		logger.Error("Failed to list store owners", err)
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(owners))
}

func (h *AdminHandler) GetUserDetails(c echo.Context) error {
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	details, err := h.adminService.GetUserDetails(ctx, userID)
	if err != nil {
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(details))
}

func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var req UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate role update", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.adminService.UpdateUserRole(ctx, userID, req.Role); err != nil {
		logger.Error("Failed to update user role", err, "user_id", userID)
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Role updated successfully"))
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	p, ok := principalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.adminService.DeleteUser(ctx, p, userID); err != nil {
		logger.Error("Failed to delete user", err, "user_id", userID)
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("User deleted successfully"))
}

// ListStores returns every store including inactive ones.
func (h *AdminHandler) ListStores(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	filter, sort, page, pageSize := parseListQuery(c)

	stores, pagination, err := h.adminService.ListStores(ctx, filter, sort, page, pageSize)
	if err != nil {
		logger.Error("Failed to list stores", err)
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"stores":     stores,
		"pagination": pagination,
	})
}

func (h *AdminHandler) GetStoreByID(c echo.Context) error {
	storeID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.adminService.GetStoreByID(ctx, storeID)
	if err != nil {
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

func (h *AdminHandler) GetStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.adminService.GetStats(ctx)
	if err != nil {
		logger.Error("Failed to compute stats", err)
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}

// RecalculateRatings rebuilds every store's aggregate from the rating rows.
func (h *AdminHandler) RecalculateRatings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	count, err := h.recalc.RecalculateAll(ctx)
	if err != nil {
		logger.Error("Failed to recalculate ratings", err)
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":        "Ratings recalculated successfully",
		"storesAffected": count,
	})
}
