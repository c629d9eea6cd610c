package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rateMyStore/domain"
	"rateMyStore/pkg/utils"

	"github.com/labstack/echo/v4"
)

type fakeSessions struct {
	userID string
	token  string
}

func (f *fakeSessions) Validate(_ context.Context, userID, token string) (string, error) {
	if userID == f.userID && token == f.token {
		return f.userID, nil
	}
	return "", errors.New("session not found")
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func runRequest(t *testing.T, mw echo.MiddlewareFunc, configure func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	configure(req)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	utils.InitJWT("test-secret")

	rec := runRequest(t, AuthMiddleware(), func(*http.Request) {})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewareBearerToken(t *testing.T) {
	utils.InitJWT("test-secret")

	token, err := utils.GenerateJWT("42", domain.RoleNormalUser, "session-1")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := AuthMiddleware()(func(c echo.Context) error {
		if got, ok := c.Get("user_id").(uint); !ok || got != 42 {
			t.Errorf("user_id = %v, want 42", c.Get("user_id"))
		}
		if got, ok := c.Get("role").(string); !ok || got != domain.RoleNormalUser {
			t.Errorf("role = %v, want normal_user", c.Get("role"))
		}
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddlewareCookieBeatsHeader(t *testing.T) {
	utils.InitJWT("test-secret")

	cookieToken, err := utils.GenerateJWT("7", domain.RoleStoreOwner, "session-cookie")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: cookieToken})
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := AuthMiddleware()(func(c echo.Context) error {
		if got, ok := c.Get("user_id").(uint); !ok || got != 7 {
			t.Errorf("user_id = %v, want 7 from cookie", c.Get("user_id"))
		}
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddlewareGarbageToken(t *testing.T) {
	utils.InitJWT("test-secret")

	rec := runRequest(t, AuthMiddleware(), func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer garbage")
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewareWithRedis(t *testing.T) {
	utils.InitJWT("test-secret")

	token, err := utils.GenerateJWT("42", domain.RoleNormalUser, "session-1")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	live := &fakeSessions{userID: "42", token: token}
	rec := runRequest(t, AuthMiddlewareWithRedis(live), func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	if rec.Code != http.StatusOK {
		t.Errorf("live session status = %d, want 200", rec.Code)
	}

	// Same JWT but the session was revoked.
	revoked := &fakeSessions{userID: "42", token: "different"}
	rec = runRequest(t, AuthMiddlewareWithRedis(revoked), func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked session status = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	cases := []struct {
		role string
		mw   echo.MiddlewareFunc
		want int
	}{
		{domain.RoleSystemAdministrator, AdminOnly(), http.StatusOK},
		{domain.RoleNormalUser, AdminOnly(), http.StatusForbidden},
		{domain.RoleStoreOwner, StoreOwnerOnly(), http.StatusOK},
		{domain.RoleSystemAdministrator, StoreOwnerOnly(), http.StatusForbidden},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("role", tc.role)

		if err := tc.mw(okHandler)(c); err != nil {
			t.Fatalf("middleware returned error: %v", err)
		}
		if rec.Code != tc.want {
			t.Errorf("role %q: status = %d, want %d", tc.role, rec.Code, tc.want)
		}
	}
}
