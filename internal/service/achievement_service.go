package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/TPerez13/MuchasVidas/internal/cache"
	apperrors "github.com/TPerez13/MuchasVidas/internal/errors"
	"github.com/TPerez13/MuchasVidas/internal/model"
	"github.com/TPerez13/MuchasVidas/internal/repository"
)

const (
	achievementsCacheKey = "achievements:catalog"
	catalogCacheTTL      = 10 * time.Minute

	weeklyStreakDays    = 7
	hydrationStreakDays = 5
)

// UserAchievements is a user's obtained achievements and their point total.
type UserAchievements struct {
	Achievements []model.UserAchievement `json:"achievements"`
	TotalPoints  int                     `json:"totalPoints"`
}

// AchievementService exposes the achievement catalog and awards.
type AchievementService interface {
	List(ctx context.Context) ([]model.Achievement, error)
	ForUser(ctx context.Context, userID uuid.UUID) (*UserAchievements, error)
	// Evaluate awards every achievement whose criterion the user meets at now
	// and returns the ones unlocked by this call.
	Evaluate(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.Achievement, error)
}

type achievementService struct {
	repo   repository.AchievementRepository
	habits repository.HabitRepository
	cache  *cache.Client
	logger *slog.Logger
}

// NewAchievementService creates a new achievement service.
func NewAchievementService(
	repo repository.AchievementRepository,
	habits repository.HabitRepository,
	cache *cache.Client,
	logger *slog.Logger,
) AchievementService {
	return &achievementService{repo: repo, habits: habits, cache: cache, logger: logger}
}

func (s *achievementService) List(ctx context.Context) ([]model.Achievement, error) {
	var cached []model.Achievement
	if s.cache.GetJSON(ctx, achievementsCacheKey, &cached) {
		return cached, nil
	}

	achievements, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	s.cache.SetJSON(ctx, achievementsCacheKey, achievements, catalogCacheTTL)
	return achievements, nil
}

func (s *achievementService) ForUser(ctx context.Context, userID uuid.UUID) (*UserAchievements, error) {
	awards, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: %w", err)
	}

	result := &UserAchievements{Achievements: awards}
	for _, award := range awards {
		result.TotalPoints += award.Points
	}
	return result, nil
}

func (s *achievementService) Evaluate(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.Achievement, error) {
	catalog, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	obtainedIDs, err := s.repo.ListObtainedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list obtained achievements: %w", err)
	}
	obtained := make(map[uuid.UUID]bool, len(obtainedIDs))
	for _, id := range obtainedIDs {
		obtained[id] = true
	}

	var unlocked []model.Achievement
	for _, achievement := range catalog {
		if obtained[achievement.ID] {
			continue
		}

		met, err := s.criterionMet(ctx, userID, achievement.Criterion, now)
		if err != nil {
			return unlocked, fmt.Errorf("evaluate %s: %w", achievement.Criterion, err)
		}
		if !met {
			continue
		}

		created, err := s.repo.Award(ctx, &model.UserAchievement{
			UserID:        userID,
			AchievementID: achievement.ID,
			Points:        achievement.Points,
			ObtainedAt:    now.UTC(),
		})
		if err != nil {
			return unlocked, fmt.Errorf("award %s: %w", achievement.Name, err)
		}
		if created {
			s.logger.InfoContext(ctx, "achievement unlocked",
				"user_id", userID, "achievement", achievement.Name, "points", achievement.Points)
			unlocked = append(unlocked, achievement)
		}
	}
	return unlocked, nil
}

func (s *achievementService) criterionMet(ctx context.Context, userID uuid.UUID, criterion string, now time.Time) (bool, error) {
	switch criterion {
	case model.CriterionFirstEntry:
		count, err := s.habits.CountEntries(ctx, userID)
		return count > 0, err

	case model.CriterionSevenDayStreak:
		return s.streakReached(ctx, userID, nil, weeklyStreakDays, now)

	case model.CriterionFiveDayHydration:
		hydration, err := s.habits.FindTypeByCode(ctx, model.HabitTypeHydration)
		if errors.Is(err, apperrors.ErrHabitTypeNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return s.streakReached(ctx, userID, &hydration.ID, hydrationStreakDays, now)

	default:
		s.logger.WarnContext(ctx, "unknown achievement criterion", "criterion", criterion)
		return false, nil
	}
}

func (s *achievementService) streakReached(ctx context.Context, userID uuid.UUID, typeID *uuid.UUID, days int, now time.Time) (bool, error) {
	since := startOfDay(now).AddDate(0, 0, -days)
	times, err := s.habits.ListEntryTimes(ctx, userID, typeID, since)
	if err != nil {
		return false, err
	}
	return CurrentStreak(times, now) >= days, nil
}

// CurrentStreak counts consecutive UTC days with at least one instant in
// times, ending today or, when today has none yet, yesterday.
func CurrentStreak(times []time.Time, now time.Time) int {
	days := make(map[time.Time]bool, len(times))
	for _, t := range times {
		days[startOfDay(t)] = true
	}

	day := startOfDay(now)
	if !days[day] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
