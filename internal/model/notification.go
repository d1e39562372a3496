package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationStatus represents the lifecycle state of a notification.
type NotificationStatus string

// NotificationStatusScheduled is the only status ever written: delivery is not implemented.
const NotificationStatusScheduled NotificationStatus = "SCHEDULED"

// Notification is a reminder a user scheduled for themselves.
type Notification struct {
	ID           uuid.UUID          `json:"id" gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID          `json:"userId" gorm:"type:char(36);not null;index"`
	Title        string             `json:"title" gorm:"size:255;not null"`
	Body         string             `json:"body" gorm:"type:text;not null"`
	ScheduledFor time.Time          `json:"scheduledFor" gorm:"not null;index"`
	Status       NotificationStatus `json:"status" gorm:"type:varchar(20);not null;default:'SCHEDULED'"`
	CreatedAt    time.Time          `json:"createdAt"`

	// Relations
	User *User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
