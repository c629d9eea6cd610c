package rest

import (
	"context"
	"net/http"
	"time"

	"rateMyStore/business/store"
	"rateMyStore/domain"
	"rateMyStore/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type StoreOwnerService interface {
	OwnerStore(ctx context.Context, p domain.Principal) (domain.Store, error)
	OwnerRatings(ctx context.Context, p domain.Principal) ([]domain.RatingWithUser, error)
	OwnerStoreWithRatings(ctx context.Context, p domain.Principal) (store.StoreWithRatings, error)
	UpdateOwnStore(ctx context.Context, p domain.Principal, changes domain.Store) (domain.Store, error)
}

type StoreOwnerHandler struct {
	ownerService StoreOwnerService
	validator    *validator.Validate
	timeout      time.Duration
}

func NewStoreOwnerHandler(ownerService StoreOwnerService) *StoreOwnerHandler {
	return &StoreOwnerHandler{
		ownerService: ownerService,
		validator:    validator.New(),
		timeout:      10 * time.Second,
	}
}

type UpdateStoreRequest struct {
	Name        string `json:"name" validate:"omitempty,min=3,max=60"`
	Address     string `json:"address" validate:"omitempty,max=400"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
}

func (h *StoreOwnerHandler) GetStore(c echo.Context) error {
	p, ok := principalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	ownerStore, err := h.ownerService.OwnerStore(ctx, p)
	if err != nil {
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(ownerStore))
}

func (h *StoreOwnerHandler) GetRatings(c echo.Context) error {
	p, ok := principalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	ratings, err := h.ownerService.OwnerRatings(ctx, p)
	if err != nil {
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(ratings))
}

// UpdateStore edits the owner's own store presentation fields.
func (h *StoreOwnerHandler) UpdateStore(c echo.Context) error {
	var req UpdateStoreRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate store update", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	p, ok := principalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updated, err := h.ownerService.UpdateOwnStore(ctx, p, domain.Store{
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Phone:       req.Phone,
	})
	if err != nil {
		logger.Error("Failed to update store", err)
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

// GetStoreWithRatings is the owner dashboard payload, the store plus every
// rating with the rater's name and email.
func (h *StoreOwnerHandler) GetStoreWithRatings(c echo.Context) error {
	p, ok := principalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.ownerService.OwnerStoreWithRatings(ctx, p)
	if err != nil {
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
