package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TPerez13/MuchasVidas/internal/auth"
	"github.com/TPerez13/MuchasVidas/internal/service"
	"github.com/TPerez13/MuchasVidas/internal/validation"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	svc service.NotificationService
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// ScheduleRequest represents a notification to schedule.
type ScheduleRequest struct {
	Title        string `json:"title" validate:"required,max=255" example:"Hidratación"`
	Body         string `json:"body" validate:"required,max=2000" example:"Toma un vaso de agua"`
	ScheduledFor string `json:"scheduledFor" validate:"required,iso8601" example:"2024-05-01T09:00:00Z"`
}

// Schedule godoc
// @Summary Schedule a notification
// @Description Records the notification with status SCHEDULED. Nothing delivers it.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ScheduleRequest true "Notification"
// @Success 201 {object} Envelope{data=map[string]model.Notification}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /notifications/schedule [post]
func (h *NotificationHandler) Schedule(c echo.Context) error {
	identity, err := auth.CurrentIdentity(c)
	if err != nil {
		return err
	}

	req, err := validation.Bind[ScheduleRequest](c)
	if err != nil {
		return err
	}

	at, err := validation.ParseTime(req.ScheduledFor)
	if err != nil {
		return err
	}

	notification, err := h.svc.Schedule(c.Request().Context(), identity.ID, req.Title, req.Body, at)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, echo.Map{"notification": notification})
}

// List godoc
// @Summary List the current user's notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=map[string][]model.Notification}
// @Failure 401 {object} errors.ErrorResponse
// @Router /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	identity, err := auth.CurrentIdentity(c)
	if err != nil {
		return err
	}

	notifications, err := h.svc.List(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, len(notifications), echo.Map{"notifications": notifications})
}
