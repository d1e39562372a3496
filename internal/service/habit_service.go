package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TPerez13/MuchasVidas/internal/cache"
	apperrors "github.com/TPerez13/MuchasVidas/internal/errors"
	"github.com/TPerez13/MuchasVidas/internal/model"
	"github.com/TPerez13/MuchasVidas/internal/repository"
)

const habitTypesCacheKey = "habit_types"

// Entry values are stored as DECIMAL(12,2).
var (
	entryValuePlaces = int32(2)
	maxEntryValue    = decimal.New(1, 10)
)

// EntryInput is a validated habit entry. A nil DateTime means now.
type EntryInput struct {
	TypeID   uuid.UUID
	Value    decimal.Decimal
	Unit     string
	Notes    *string
	DateTime *time.Time
}

// AchievementEvaluator awards achievements after new activity.
type AchievementEvaluator interface {
	Evaluate(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.Achievement, error)
}

// HabitService handles habit types and entries.
type HabitService interface {
	ListTypes(ctx context.Context) ([]model.HabitType, error)
	// CreateEntry stores the entry and returns it with the achievements it unlocked.
	CreateEntry(ctx context.Context, userID uuid.UUID, input EntryInput) (*model.HabitEntry, []model.Achievement, error)
	ListEntries(ctx context.Context, userID uuid.UUID, filter model.EntryFilter) ([]model.HabitEntry, error)
}

type habitService struct {
	repo         repository.HabitRepository
	achievements AchievementEvaluator
	cache        *cache.Client
	logger       *slog.Logger
	now          func() time.Time
}

// NewHabitService creates a new habit service.
func NewHabitService(
	repo repository.HabitRepository,
	achievements AchievementEvaluator,
	cache *cache.Client,
	logger *slog.Logger,
) HabitService {
	return &habitService{
		repo:         repo,
		achievements: achievements,
		cache:        cache,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *habitService) ListTypes(ctx context.Context) ([]model.HabitType, error) {
	var cached []model.HabitType
	if s.cache.GetJSON(ctx, habitTypesCacheKey, &cached) {
		return cached, nil
	}

	types, err := s.repo.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list habit types: %w", err)
	}
	s.cache.SetJSON(ctx, habitTypesCacheKey, types, catalogCacheTTL)
	return types, nil
}

func (s *habitService) CreateEntry(ctx context.Context, userID uuid.UUID, input EntryInput) (*model.HabitEntry, []model.Achievement, error) {
	value := input.Value.Round(entryValuePlaces)
	switch {
	case !value.IsPositive():
		return nil, nil, invalidValue("value must be a positive number")
	case value.GreaterThanOrEqual(maxEntryValue):
		return nil, nil, invalidValue("value must be less than " + maxEntryValue.String())
	}

	habitType, err := s.repo.FindTypeByID(ctx, input.TypeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrHabitTypeNotFound) {
			return nil, nil, apperrors.ErrHabitTypeNotFound
		}
		return nil, nil, fmt.Errorf("find habit type: %w", err)
	}

	now := s.now()
	at := now
	if input.DateTime != nil {
		at = input.DateTime.UTC()
	}

	entry := &model.HabitEntry{
		ID:       uuid.New(),
		UserID:   userID,
		TypeID:   habitType.ID,
		Value:    value,
		Unit:     input.Unit,
		Notes:    input.Notes,
		DateTime: at,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, nil, fmt.Errorf("create habit entry: %w", err)
	}
	entry.Type = habitType

	unlocked, err := s.achievements.Evaluate(ctx, userID, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "achievement evaluation failed",
			"user_id", userID, "entry_id", entry.ID, "error", err)
	}
	if unlocked == nil {
		unlocked = []model.Achievement{}
	}

	return entry, unlocked, nil
}

func (s *habitService) ListEntries(ctx context.Context, userID uuid.UUID, filter model.EntryFilter) ([]model.HabitEntry, error) {
	entries, err := s.repo.ListEntries(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list habit entries: %w", err)
	}
	return entries, nil
}

func invalidValue(message string) error {
	return apperrors.NewValidationError([]apperrors.FieldError{{Field: "value", Message: message}})
}
