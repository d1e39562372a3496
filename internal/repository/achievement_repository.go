package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TPerez13/MuchasVidas/internal/model"
)

// AchievementRepository defines achievement catalog and award persistence.
type AchievementRepository interface {
	List(ctx context.Context) ([]model.Achievement, error)
	// Upsert inserts achievement or updates the row with the same name.
	Upsert(ctx context.Context, achievement *model.Achievement) error
	// ListForUser returns the user's awards newest first, with Achievement loaded.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error)
	ListObtainedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// Award records award and reports whether it was new. Awarding an
	// achievement the user already holds is not an error.
	Award(ctx context.Context, award *model.UserAchievement) (bool, error)
}

type achievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository creates a new achievement repository.
func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) List(ctx context.Context) ([]model.Achievement, error) {
	var achievements []model.Achievement
	if err := r.db.WithContext(ctx).Order("points ASC, name ASC").Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}

func (r *achievementRepository) Upsert(ctx context.Context, achievement *model.Achievement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Achievement
		err := tx.Where("name = ?", achievement.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(achievement).Error
		}
		if err != nil {
			return err
		}

		achievement.ID = existing.ID
		return tx.Model(&existing).Updates(map[string]interface{}{
			"description": achievement.Description,
			"criterion":   achievement.Criterion,
			"points":      achievement.Points,
		}).Error
	})
}

func (r *achievementRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error) {
	var awards []model.UserAchievement
	if err := r.db.WithContext(ctx).Preload("Achievement").
		Where("user_id = ?", userID).
		Order("obtained_at DESC").
		Find(&awards).Error; err != nil {
		return nil, err
	}
	return awards, nil
}

func (r *achievementRepository) ListObtainedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&model.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *achievementRepository) Award(ctx context.Context, award *model.UserAchievement) (bool, error) {
	err := r.db.WithContext(ctx).Create(award).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
