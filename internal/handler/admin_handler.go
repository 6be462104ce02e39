package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"taply/internal/service"
)

// AdminHandler handles privileged user management endpoints.
type AdminHandler struct {
	adminService service.AdminService
	log          *logrus.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(adminService service.AdminService, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, log: log}
}

// CreateSubAdminRequest invites a new sub-admin.
type CreateSubAdminRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Permissions []string `json:"permissions" validate:"dive,oneof=users profiles qrcodes audit"`
}

// ListUsers godoc
// @Summary Paginated user listing
// @Tags admin
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} service.UserPage
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.adminService.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, result)
}

// DeleteUser godoc
// @Summary Delete a user permanently
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.adminService.DeleteUser(c.Request().Context(), claims.UserID, id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "user deleted"})
}

// SuspendUser godoc
// @Summary Suspend a user account
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id}/suspend [post]
func (h *AdminHandler) SuspendUser(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.adminService.SuspendUser(c.Request().Context(), claims.UserID, id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "user suspended"})
}

// CreateSubAdmin godoc
// @Summary Invite a sub-admin
// @Description Creates a pending sub-admin with a default profile and returns the invitation token once.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body CreateSubAdminRequest true "Sub-admin invitation"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/subadmins [post]
func (h *AdminHandler) CreateSubAdmin(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req CreateSubAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, token, err := h.adminService.CreateSubAdmin(c.Request().Context(), claims.UserID, req.Email, req.Permissions)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"user":             user,
		"invitation_token": token,
	})
}

// ListAudit godoc
// @Summary Paginated audit log
// @Tags admin
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} service.AuditPage
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/audit [get]
func (h *AdminHandler) ListAudit(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.adminService.ListAudit(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, result)
}
