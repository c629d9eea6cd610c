package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rateMyStore/domain"
	"rateMyStore/pkg/logger"
	"rateMyStore/pkg/utils"

	"github.com/labstack/echo/v4"
)

// AuthCookieName is the cookie carrying the session token. The Authorization
// header is the fallback for non-browser clients.
const AuthCookieName = "auth_token"

// SessionValidator checks a presented token against the live session.
type SessionValidator interface {
	Validate(ctx context.Context, userID, token string) (string, error)
}

func extractToken(c echo.Context) string {
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) == 2 && tokenParts[0] == "Bearer" {
		return tokenParts[1]
	}

	return ""
}

// AuthMiddleware validates the JWT without touching Redis.
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := extractToken(c)
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"message": "Authentication required",
				})
			}

			claims, err := utils.ParseJWT(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"message": "Invalid token",
				})
			}

			expAt, err := claims.GetExpirationTime()
			if err != nil || time.Now().After(expAt.Time) {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"message": "Token expired",
				})
			}

			userIDUint, err := strconv.ParseUint(claims.UserID, 10, 64)
			if err != nil {
				logger.Error("Invalid user ID in token", err)
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"message": "Invalid token",
				})
			}

			c.Set("user_id", uint(userIDUint))
			c.Set("role", claims.Role)
			c.Set("token", tokenString)

			return next(c)
		}
	}
}

// AuthMiddlewareWithRedis additionally checks the token against the live
// Redis session, so logout revokes access immediately.
func AuthMiddlewareWithRedis(sessions SessionValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := extractToken(c)
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"message": "Authentication required",
				})
			}

			claims, err := utils.ParseJWT(tokenString)
			if err != nil {
				logger.Error("Failed to parse JWT", err)
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"message": "Invalid token",
				})
			}

			expAt, err := claims.GetExpirationTime()
			if err != nil || time.Now().After(expAt.Time) {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"message": "Token expired",
				})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			userID, err := sessions.Validate(ctx, claims.UserID, tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"message": "Session expired or invalid",
				})
			}

			if userID != claims.UserID {
				logger.Error("UserID mismatch between JWT and session")
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"message": "Invalid token",
				})
			}

			userIDUint, err := strconv.ParseUint(claims.UserID, 10, 64)
			if err != nil {
				logger.Error("Invalid user ID in token", err)
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"message": "Invalid token",
				})
			}

			c.Set("user_id", uint(userIDUint))
			c.Set("role", claims.Role)
			c.Set("token", tokenString)

			return next(c)
		}
	}
}

func AdminOnly() echo.MiddlewareFunc {
	return RequireRole(domain.RoleSystemAdministrator)
}

func StoreOwnerOnly() echo.MiddlewareFunc {
	return RequireRole(domain.RoleStoreOwner)
}

// RequireRole gates a route group to a single role.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleStr, ok := c.Get("role").(string)
			if !ok || roleStr != role {
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"message": "Insufficient permissions",
				})
			}

			return next(c)
		}
	}
}
