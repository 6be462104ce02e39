package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"taply/internal/auth"
	apperrors "taply/internal/errors"
)

// respondError maps a domain error to a structured HTTP response. Unexpected
// errors collapse to a generic 500 and are logged server-side.
func respondError(c echo.Context, log *logrus.Logger, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode == http.StatusInternalServerError && log != nil {
		log.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// currentClaims pulls the verified session claims placed in the context by
// the echo-jwt middleware.
func currentClaims(c echo.Context) (*auth.Claims, error) {
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
