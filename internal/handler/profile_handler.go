package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"taply/internal/service"
)

// ProfileHandler handles profile CRUD and the public profile lookup.
type ProfileHandler struct {
	profileService service.ProfileService
	log            *logrus.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profileService service.ProfileService, log *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, log: log}
}

// ProfileRequest represents the editable profile fields.
type ProfileRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=64"`
	DisplayName string `json:"display_name" validate:"required,max=255"`
	Title       string `json:"title" validate:"max=255"`
	Company     string `json:"company" validate:"max=255"`
	Bio         string `json:"bio" validate:"max=1024"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"max=64"`
	Website     string `json:"website" validate:"omitempty,url"`
	LinkedIn    string `json:"linkedin" validate:"omitempty,url"`
	Twitter     string `json:"twitter" validate:"omitempty,url"`
	Instagram   string `json:"instagram" validate:"omitempty,url"`
	ShowEmail   bool   `json:"show_email"`
	ShowPhone   bool   `json:"show_phone"`
}

func (r *ProfileRequest) toInput() service.ProfileInput {
	return service.ProfileInput{
		Username:    r.Username,
		DisplayName: r.DisplayName,
		Title:       r.Title,
		Company:     r.Company,
		Bio:         r.Bio,
		Email:       r.Email,
		Phone:       r.Phone,
		Website:     r.Website,
		LinkedIn:    r.LinkedIn,
		Twitter:     r.Twitter,
		Instagram:   r.Instagram,
		ShowEmail:   r.ShowEmail,
		ShowPhone:   r.ShowPhone,
	}
}

// Create godoc
// @Summary Create a profile
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body ProfileRequest true "Profile fields"
// @Success 201 {object} model.Profile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /profiles [post]
func (h *ProfileHandler) Create(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, err := h.profileService.Create(c.Request().Context(), claims.UserID, req.toInput())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, profile)
}

// Update godoc
// @Summary Update an owned profile
// @Tags profiles
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param request body ProfileRequest true "Profile fields"
// @Success 200 {object} model.Profile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /profiles/{id} [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, err := h.profileService.Update(c.Request().Context(), claims.UserID, id, req.toInput())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// Get godoc
// @Summary Get an owned profile
// @Tags profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} model.Profile
// @Failure 404 {object} errors.ErrorResponse
// @Router /profiles/{id} [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	profile, err := h.profileService.Get(c.Request().Context(), claims.UserID, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// List godoc
// @Summary List the caller's profiles
// @Tags profiles
// @Produce json
// @Success 200 {array} model.Profile
// @Router /profiles [get]
func (h *ProfileHandler) List(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	profiles, err := h.profileService.List(c.Request().Context(), claims.UserID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, profiles)
}

// Delete godoc
// @Summary Soft-delete an owned profile
// @Tags profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /profiles/{id} [delete]
func (h *ProfileHandler) Delete(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.profileService.SoftDelete(c.Request().Context(), claims.UserID, id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "profile deleted"})
}

// Restore godoc
// @Summary Restore a soft-deleted profile
// @Tags profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} model.Profile
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /profiles/{id}/restore [post]
func (h *ProfileHandler) Restore(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	profile, err := h.profileService.Restore(c.Request().Context(), claims.UserID, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// GetPublic godoc
// @Summary Public profile page data
// @Description Returns only the fields the owner marked visible.
// @Tags profiles
// @Produce json
// @Param username path string true "Profile username"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /profile/{username} [get]
func (h *ProfileHandler) GetPublic(c echo.Context) error {
	view, err := h.profileService.GetPublic(c.Request().Context(), c.Param("username"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, view)
}
