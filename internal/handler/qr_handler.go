package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"taply/internal/service"
)

// QRHandler handles QR code management and the public redirect endpoint.
type QRHandler struct {
	qrService service.QRService
	log       *logrus.Logger
}

// NewQRHandler creates a new QR handler.
func NewQRHandler(qrService service.QRService, log *logrus.Logger) *QRHandler {
	return &QRHandler{qrService: qrService, log: log}
}

// CreateQRCodeRequest binds a new QR code to a profile.
type CreateQRCodeRequest struct {
	ProfileID string `json:"profile_id" validate:"required,uuid4"`
}

// Resolve godoc
// @Summary Resolve a scanned QR code
// @Description Always redirects: to the public profile page on success, to the home page otherwise.
// @Tags qr
// @Param code path string true "QR code token"
// @Success 302
// @Router /qr/{code} [get]
func (h *QRHandler) Resolve(c echo.Context) error {
	target := h.qrService.Resolve(
		c.Request().Context(),
		c.Param("code"),
		c.RealIP(),
		c.Request().UserAgent(),
	)
	return c.Redirect(http.StatusFound, target)
}

// Create godoc
// @Summary Create a QR code for an owned profile
// @Tags qr
// @Accept json
// @Produce json
// @Param request body CreateQRCodeRequest true "Target profile"
// @Success 201 {object} model.QRCode
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /qrcodes [post]
func (h *QRHandler) Create(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req CreateQRCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid profile_id")
	}

	qr, err := h.qrService.Create(c.Request().Context(), claims.UserID, profileID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, qr)
}

// Get godoc
// @Summary Get an owned QR code
// @Tags qr
// @Produce json
// @Param id path string true "QR code ID"
// @Success 200 {object} model.QRCode
// @Failure 404 {object} errors.ErrorResponse
// @Router /qrcodes/{id} [get]
func (h *QRHandler) Get(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	qr, err := h.qrService.Get(c.Request().Context(), claims.UserID, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, qr)
}

// Delete godoc
// @Summary Soft-delete an owned QR code
// @Tags qr
// @Produce json
// @Param id path string true "QR code ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /qrcodes/{id} [delete]
func (h *QRHandler) Delete(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.qrService.SoftDelete(c.Request().Context(), claims.UserID, id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "qr code deleted"})
}

// Restore godoc
// @Summary Restore a soft-deleted QR code
// @Tags qr
// @Produce json
// @Param id path string true "QR code ID"
// @Success 200 {object} model.QRCode
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /qrcodes/{id}/restore [post]
func (h *QRHandler) Restore(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	qr, err := h.qrService.Restore(c.Request().Context(), claims.UserID, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, qr)
}

// ListScans godoc
// @Summary Scan events for an owned QR code
// @Tags qr
// @Produce json
// @Param id path string true "QR code ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /qrcodes/{id}/scans [get]
func (h *QRHandler) ListScans(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	events, total, err := h.qrService.ListScans(c.Request().Context(), claims.UserID, id, page, limit)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"scans": events,
		"total": total,
	})
}
