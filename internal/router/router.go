package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"taply/internal/auth"
	"taply/internal/config"
	apperrors "taply/internal/errors"
	"taply/internal/handler"
	"taply/internal/ratelimit"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	limiter *ratelimit.Limiter,
	guard *RoleGuard,
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	qrHandler *handler.QRHandler,
	adminHandler *handler.AdminHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// QR resolution is public and must never show an error page; the short
	// root path is what printed codes encode.
	e.GET("/qr/:code", qrHandler.Resolve)

	api := e.Group("/api")
	api.GET("/qr/:code", qrHandler.Resolve)

	// Public profile page data
	api.GET("/profile/:username", profileHandler.GetPublic)

	// Auth routes, rate limited per client IP
	authGroup := api.Group("/auth", RateLimit(limiter))
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.POST("/invitation/accept", authHandler.AcceptInvitation)

	// Secured routes (session cookie required)
	secured := api.Group("", sessionGuard(jwtService))

	secured.GET("/me", authHandler.Me)

	// Profile routes
	secured.POST("/profiles", profileHandler.Create)
	secured.GET("/profiles", profileHandler.List)
	secured.GET("/profiles/:id", profileHandler.Get)
	secured.PUT("/profiles/:id", profileHandler.Update)
	secured.DELETE("/profiles/:id", profileHandler.Delete)
	secured.POST("/profiles/:id/restore", profileHandler.Restore)

	// QR code routes
	secured.POST("/qrcodes", qrHandler.Create)
	secured.GET("/qrcodes/:id", qrHandler.Get)
	secured.DELETE("/qrcodes/:id", qrHandler.Delete)
	secured.POST("/qrcodes/:id/restore", qrHandler.Restore)
	secured.GET("/qrcodes/:id/scans", qrHandler.ListScans)

	// Admin routes. User management is open to sub-admins holding the
	// "users" permission; invitations and the audit log stay admin-only.
	admin := secured.Group("/admin")
	admin.GET("/users", adminHandler.ListUsers, guard.Require("users"))
	admin.DELETE("/users/:id", adminHandler.DeleteUser, guard.Require("users"))
	admin.POST("/users/:id/suspend", adminHandler.SuspendUser, guard.Require("users"))
	admin.POST("/subadmins", adminHandler.CreateSubAdmin, guard.Require(""))
	admin.GET("/audit", adminHandler.ListAudit, guard.Require(""))
}

// sessionGuard verifies the session cookie. A missing, malformed or expired
// token uniformly yields 401; echo-jwt's default would answer 400 when the
// cookie is absent.
func sessionGuard(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  jwtService.Secret(),
		TokenLookup: "cookie:" + auth.SessionCookieName,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			httpErr := apperrors.MapErrorToHTTP(apperrors.ErrUnauthorized)
			return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
