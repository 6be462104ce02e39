package router

import (
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"taply/internal/auth"
	apperrors "taply/internal/errors"
	"taply/internal/model"
	"taply/internal/ratelimit"
	"taply/internal/repository"
)

// RateLimit throttles requests per client IP using the fixed-window limiter.
func RateLimit(limiter *ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := limiter.Allow(c.RealIP()); err != nil {
				httpErr := apperrors.MapErrorToHTTP(err)
				return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}

// RoleGuard gates privileged routes on the session's role claim. Admins pass
// everywhere; sub-admins pass where their stored permissions list contains
// the route's permission.
type RoleGuard struct {
	users repository.UserRepository
}

// NewRoleGuard creates a role guard.
func NewRoleGuard(users repository.UserRepository) *RoleGuard {
	return &RoleGuard{users: users}
}

// Require allows admins, and sub-admins holding the given permission. An
// empty permission makes the route admin-only.
func (g *RoleGuard) Require(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := sessionClaims(c)
			if err != nil {
				httpErr := apperrors.MapErrorToHTTP(err)
				return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			switch model.Role(claims.Role) {
			case model.RoleAdmin:
				return next(c)
			case model.RoleSubAdmin:
				if permission != "" && g.hasPermission(c, claims, permission) {
					return next(c)
				}
			}

			httpErr := apperrors.MapErrorToHTTP(apperrors.ErrForbidden)
			return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
	}
}

// hasPermission checks the sub-admin's stored permissions list. The list
// lives on the user record, not in the token, so revoking a permission takes
// effect immediately.
func (g *RoleGuard) hasPermission(c echo.Context, claims *auth.Claims, permission string) bool {
	user, err := g.users.FindByID(c.Request().Context(), claims.UserID)
	if err != nil {
		return false
	}

	var permissions []string
	if err := json.Unmarshal(user.Permissions, &permissions); err != nil {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func sessionClaims(c echo.Context) (*auth.Claims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}
