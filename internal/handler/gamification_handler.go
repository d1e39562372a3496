package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TPerez13/MuchasVidas/internal/auth"
	"github.com/TPerez13/MuchasVidas/internal/service"
)

// GamificationHandler handles achievement endpoints.
type GamificationHandler struct {
	svc service.AchievementService
}

// NewGamificationHandler creates a new gamification handler.
func NewGamificationHandler(svc service.AchievementService) *GamificationHandler {
	return &GamificationHandler{svc: svc}
}

// ListAchievements godoc
// @Summary List every achievement
// @Tags gamification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=map[string][]model.Achievement}
// @Failure 401 {object} errors.ErrorResponse
// @Router /gamification/achievements [get]
func (h *GamificationHandler) ListAchievements(c echo.Context) error {
	achievements, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, len(achievements), echo.Map{"achievements": achievements})
}

// MyAchievements godoc
// @Summary The current user's achievements and total points
// @Tags gamification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=service.UserAchievements}
// @Failure 401 {object} errors.ErrorResponse
// @Router /gamification/me [get]
func (h *GamificationHandler) MyAchievements(c echo.Context) error {
	identity, err := auth.CurrentIdentity(c)
	if err != nil {
		return err
	}

	mine, err := h.svc.ForUser(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, mine)
}
