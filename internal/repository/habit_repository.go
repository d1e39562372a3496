package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/TPerez13/MuchasVidas/internal/errors"
	"github.com/TPerez13/MuchasVidas/internal/model"
)

// HabitRepository defines habit type and entry persistence operations.
type HabitRepository interface {
	ListTypes(ctx context.Context) ([]model.HabitType, error)
	FindTypeByID(ctx context.Context, id uuid.UUID) (*model.HabitType, error)
	FindTypeByCode(ctx context.Context, code string) (*model.HabitType, error)
	// UpsertType inserts habitType or updates the row with the same code,
	// leaving habitType.ID set to the stored id.
	UpsertType(ctx context.Context, habitType *model.HabitType) error
	CreateEntry(ctx context.Context, entry *model.HabitEntry) error
	// ListEntries returns the user's entries newest first, with Type loaded.
	ListEntries(ctx context.Context, userID uuid.UUID, filter model.EntryFilter) ([]model.HabitEntry, error)
	// ListEntryTimes returns the instants of the user's entries at or after
	// since, newest first. A non-nil typeID restricts them to one habit type.
	ListEntryTimes(ctx context.Context, userID uuid.UUID, typeID *uuid.UUID, since time.Time) ([]time.Time, error)
	CountEntries(ctx context.Context, userID uuid.UUID) (int64, error)
}

type habitRepository struct {
	db *gorm.DB
}

// NewHabitRepository creates a new habit repository.
func NewHabitRepository(db *gorm.DB) HabitRepository {
	return &habitRepository{db: db}
}

func (r *habitRepository) ListTypes(ctx context.Context) ([]model.HabitType, error) {
	var types []model.HabitType
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *habitRepository) FindTypeByID(ctx context.Context, id uuid.UUID) (*model.HabitType, error) {
	var habitType model.HabitType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&habitType).Error; err != nil {
		return nil, translate(err, apperrors.ErrHabitTypeNotFound, nil)
	}
	return &habitType, nil
}

func (r *habitRepository) FindTypeByCode(ctx context.Context, code string) (*model.HabitType, error) {
	var habitType model.HabitType
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&habitType).Error; err != nil {
		return nil, translate(err, apperrors.ErrHabitTypeNotFound, nil)
	}
	return &habitType, nil
}

func (r *habitRepository) UpsertType(ctx context.Context, habitType *model.HabitType) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.HabitType
		err := tx.Where("code = ?", habitType.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(habitType).Error
		}
		if err != nil {
			return err
		}

		habitType.ID = existing.ID
		return tx.Model(&existing).Updates(map[string]interface{}{
			"name":        habitType.Name,
			"description": habitType.Description,
		}).Error
	})
}

func (r *habitRepository) CreateEntry(ctx context.Context, entry *model.HabitEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *habitRepository) ListEntries(ctx context.Context, userID uuid.UUID, filter model.EntryFilter) ([]model.HabitEntry, error) {
	query := r.db.WithContext(ctx).Preload("Type").Where("user_id = ?", userID)
	if filter.TypeID != nil {
		query = query.Where("type_id = ?", *filter.TypeID)
	}
	if filter.From != nil {
		query = query.Where("date_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date_time <= ?", *filter.To)
	}

	var entries []model.HabitEntry
	if err := query.Order("date_time DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *habitRepository) ListEntryTimes(ctx context.Context, userID uuid.UUID, typeID *uuid.UUID, since time.Time) ([]time.Time, error) {
	query := r.db.WithContext(ctx).Model(&model.HabitEntry{}).
		Where("user_id = ? AND date_time >= ?", userID, since)
	if typeID != nil {
		query = query.Where("type_id = ?", *typeID)
	}

	var times []time.Time
	if err := query.Order("date_time DESC").Pluck("date_time", &times).Error; err != nil {
		return nil, err
	}
	return times, nil
}

func (r *habitRepository) CountEntries(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.HabitEntry{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
