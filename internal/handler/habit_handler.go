package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/TPerez13/MuchasVidas/internal/auth"
	"github.com/TPerez13/MuchasVidas/internal/model"
	"github.com/TPerez13/MuchasVidas/internal/service"
	"github.com/TPerez13/MuchasVidas/internal/validation"
)

// HabitHandler handles habit type and entry endpoints.
type HabitHandler struct {
	svc service.HabitService
}

// NewHabitHandler creates a new habit handler.
func NewHabitHandler(svc service.HabitService) *HabitHandler {
	return &HabitHandler{svc: svc}
}

// CreateEntryRequest represents a new habit entry.
type CreateEntryRequest struct {
	TypeID   string             `json:"typeId" validate:"required,uuid" example:"3f0c9a52-6a4e-4a57-9a3e-1d2b8c7e5f10"`
	Value    validation.Decimal `json:"value" validate:"positive,lt=10000000000" swaggertype:"number" example:"250"`
	Unit     string             `json:"unit" validate:"required,max=32" example:"ml"`
	Notes    *string            `json:"notes" validate:"omitnil,max=1000"`
	DateTime *string            `json:"dateTime" validate:"omitnil,iso8601" example:"2024-05-01T08:30:00Z"`
}

// ListEntriesQuery filters the entry listing.
type ListEntriesQuery struct {
	From   string `query:"from" validate:"omitempty,iso8601"`
	To     string `query:"to" validate:"omitempty,iso8601"`
	TypeID string `query:"typeId" validate:"omitempty,uuid"`
}

// ListTypes godoc
// @Summary List habit types
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=map[string][]model.HabitType}
// @Failure 401 {object} errors.ErrorResponse
// @Router /habits/types [get]
func (h *HabitHandler) ListTypes(c echo.Context) error {
	types, err := h.svc.ListTypes(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, len(types), echo.Map{"habitTypes": types})
}

// CreateEntry godoc
// @Summary Log a habit entry
// @Description Stores the entry and evaluates achievements. dateTime defaults to now.
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateEntryRequest true "Habit entry"
// @Success 201 {object} Envelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /habits/entries [post]
func (h *HabitHandler) CreateEntry(c echo.Context) error {
	identity, err := auth.CurrentIdentity(c)
	if err != nil {
		return err
	}

	req, err := validation.Bind[CreateEntryRequest](c)
	if err != nil {
		return err
	}

	typeID, err := uuid.Parse(req.TypeID)
	if err != nil {
		return err
	}
	input := service.EntryInput{
		TypeID: typeID,
		Value:  req.Value.Decimal,
		Unit:   req.Unit,
		Notes:  req.Notes,
	}
	if req.DateTime != nil {
		at, err := validation.ParseTime(*req.DateTime)
		if err != nil {
			return err
		}
		input.DateTime = &at
	}

	entry, unlocked, err := h.svc.CreateEntry(c.Request().Context(), identity.ID, input)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, echo.Map{
		"entry":                entry,
		"unlockedAchievements": unlocked,
	})
}

// ListEntries godoc
// @Summary List the current user's habit entries
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param from query string false "Earliest dateTime (ISO-8601)"
// @Param to query string false "Latest dateTime (ISO-8601)"
// @Param typeId query string false "Habit type id"
// @Success 200 {object} Envelope{data=map[string][]model.HabitEntry}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /habits/entries [get]
func (h *HabitHandler) ListEntries(c echo.Context) error {
	identity, err := auth.CurrentIdentity(c)
	if err != nil {
		return err
	}

	query, err := validation.Bind[ListEntriesQuery](c)
	if err != nil {
		return err
	}

	var filter model.EntryFilter
	if query.TypeID != "" {
		typeID, err := uuid.Parse(query.TypeID)
		if err != nil {
			return err
		}
		filter.TypeID = &typeID
	}
	if query.From != "" {
		from, err := validation.ParseTime(query.From)
		if err != nil {
			return err
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := validation.ParseTime(query.To)
		if err != nil {
			return err
		}
		filter.To = &to
	}

	entries, err := h.svc.ListEntries(c.Request().Context(), identity.ID, filter)
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, len(entries), echo.Map{"entries": entries})
}
