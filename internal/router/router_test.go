package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"taply/internal/auth"
)

func newGuardedEcho(jwtService *auth.JWTService) *echo.Echo {
	e := echo.New()
	e.GET("/api/me", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, sessionGuard(jwtService))
	return e
}

func TestSessionGuard(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	e := newGuardedEcho(jwtService)

	t.Run("missing cookie yields 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
	})

	t.Run("malformed cookie yields 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "garbage"})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong signing key yields 401", func(t *testing.T) {
		forged, err := auth.NewJWTService("other-secret").GenerateSessionToken(uuid.New(), "alice@example.com", "user")
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: forged})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid cookie passes", func(t *testing.T) {
		token, err := jwtService.GenerateSessionToken(uuid.New(), "alice@example.com", "user")
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(auth.NewSessionCookie(token, false))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
