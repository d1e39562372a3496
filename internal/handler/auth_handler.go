package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TPerez13/MuchasVidas/internal/auth"
	"github.com/TPerez13/MuchasVidas/internal/service"
	"github.com/TPerez13/MuchasVidas/internal/validation"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"ana@example.com"`
	Name     string `json:"name" validate:"required,min=2,max=255" example:"Ana"`
	Password string `json:"password" validate:"required,min=6,max=72" example:"secret1"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"ana@example.com"`
	Password string `json:"password" validate:"required" example:"secret1"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	req, err := validation.Bind[RegisterRequest](c)
	if err != nil {
		return err
	}

	result, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, result)
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} service.AuthResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	req, err := validation.Bind[LoginRequest](c)
	if err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Identity
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	identity, err := auth.CurrentIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}
