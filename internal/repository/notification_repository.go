package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TPerez13/MuchasVidas/internal/model"
)

// NotificationRepository defines notification persistence operations.
type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	// ListForUser returns the user's notifications, latest scheduledFor first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("scheduled_for DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}
