package middleware

import (
	"errors"
	"net/http"

	"rateMyStore/domain"
	"rateMyStore/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ErrorHandler maps domain sentinel errors onto HTTP status codes.
// Unknown errors get a stable 500 body so internals never leak.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(status)
		}
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	default:
		logger.Error("Unhandled error", err, "path", c.Path())
	}

	if jsonErr := c.JSON(status, map[string]interface{}{"message": message}); jsonErr != nil {
		logger.Error("Failed to write error response", jsonErr)
	}
}
