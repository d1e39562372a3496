package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TPerez13/MuchasVidas/internal/auth"
	"github.com/TPerez13/MuchasVidas/internal/service"
	"github.com/TPerez13/MuchasVidas/internal/validation"
)

// UserHandler serves the current user's profile.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateProfileRequest represents a profile update. Absent fields are kept.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitnil,min=2,max=255" example:"Ana María"`
	Email *string `json:"email" validate:"omitnil,email,max=255" example:"ana.maria@example.com"`
}

// GetProfile godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=map[string]model.Identity}
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	identity, err := auth.CurrentIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.svc.Profile(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"user": user})
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} Envelope{data=map[string]model.Identity}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/me [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	identity, err := auth.CurrentIdentity(c)
	if err != nil {
		return err
	}

	req, err := validation.Bind[UpdateProfileRequest](c)
	if err != nil {
		return err
	}

	user, err := h.svc.UpdateProfile(c.Request().Context(), identity.ID, service.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"user": user})
}
