package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rateMyStore/business/store"
	"rateMyStore/domain"
	"rateMyStore/pkg/logger"
	"rateMyStore/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type StoreService interface {
	List(ctx context.Context, p domain.Principal, filter domain.StoreFilter, sort domain.StoreSort, page, pageSize int) ([]domain.Store, domain.Pagination, error)
	GetWithUserRating(ctx context.Context, p domain.Principal, storeID uint) (store.StoreWithUserRating, error)
	ListRatings(ctx context.Context, p domain.Principal, storeID uint) ([]domain.RatingWithUser, error)
}

type RatingService interface {
	Submit(ctx context.Context, p domain.Principal, storeID uint, value int, review string) (domain.Rating, error)
	Update(ctx context.Context, p domain.Principal, storeID uint, value int, review string) (domain.Rating, error)
	Delete(ctx context.Context, p domain.Principal, storeID uint) error
}

type StoreHandler struct {
	storeService  StoreService
	ratingService RatingService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewStoreHandler(storeService StoreService, ratingService RatingService) *StoreHandler {
	return &StoreHandler{
		storeService:  storeService,
		ratingService: ratingService,
		validator:     validator.New(),
		timeout:       10 * time.Second,
	}
}

type RatingRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"max=500"`
}

func principalFromContext(c echo.Context) (domain.Principal, bool) {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return domain.Principal{}, false
	}
	role, ok := c.Get("role").(string)
	if !ok {
		return domain.Principal{}, false
	}
	return domain.Principal{ID: userID, Role: role}, true
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Param(name), &id); err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func parseListQuery(c echo.Context) (domain.StoreFilter, domain.StoreSort, int, int) {
	filter := domain.StoreFilter{
		Name:    c.QueryParam("name"),
		Email:   c.QueryParam("email"),
		Address: c.QueryParam("address"),
	}

	sort := domain.StoreSort{
		Field:     c.QueryParam("sortBy"),
		Direction: strings.ToLower(c.QueryParam("sortOrder")),
	}

	var page, pageSize int
	fmt.Sscan(c.QueryParam("page"), &page)
	fmt.Sscan(c.QueryParam("limit"), &pageSize)

	return filter, sort, page, pageSize
}

// List answers the browse/search view. Only active stores appear.
func (h *StoreHandler) List(c echo.Context) error {
	p, ok := principalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	metrics.StoreListRequests.Inc()

	filter, sort, page, pageSize := parseListQuery(c)

	stores, pagination, err := h.storeService.List(ctx, p, filter, sort, page, pageSize)
	if err != nil {
		logger.Error("Failed to list stores", err)
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"stores":     stores,
		"pagination": pagination,
	})
}

func (h *StoreHandler) GetByID(c echo.Context) error {
	storeID, err := parseIDParam(c, "storeId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	p, ok := principalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.storeService.GetWithUserRating(ctx, p, storeID)
	if err != nil {
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

func (h *StoreHandler) ListRatings(c echo.Context) error {
	storeID, err := parseIDParam(c, "storeId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	p, ok := principalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	ratings, err := h.storeService.ListRatings(ctx, p, storeID)
	if err != nil {
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(ratings))
}

func (h *StoreHandler) SubmitRating(c echo.Context) error {
	storeID, err := parseIDParam(c, "storeId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var req RatingRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate rating request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	p, ok := principalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rating, err := h.ratingService.Submit(ctx, p, storeID, req.Rating, req.Review)
	if err != nil {
		status := errStatus(err)
		if status == http.StatusConflict {
			metrics.RatingConflicts.Inc()
		}
		return c.JSON(status, ResponseError{Message: err.Error()})
	}

	metrics.RatingWrites.WithLabelValues("submit").Inc()

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(rating))
}

func (h *StoreHandler) UpdateRating(c echo.Context) error {
	storeID, err := parseIDParam(c, "storeId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var req RatingRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate rating request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	p, ok := principalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rating, err := h.ratingService.Update(ctx, p, storeID, req.Rating, req.Review)
	if err != nil {
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	metrics.RatingWrites.WithLabelValues("update").Inc()

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rating))
}

func (h *StoreHandler) DeleteRating(c echo.Context) error {
	storeID, err := parseIDParam(c, "storeId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	p, ok := principalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.ratingService.Delete(ctx, p, storeID); err != nil {
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	metrics.RatingWrites.WithLabelValues("delete").Inc()

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Rating deleted successfully"))
}
