package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HabitTypeHydration is the code of the hydration habit type.
const HabitTypeHydration = "HYDRATION"

// HabitType is a reference category users log entries against.
type HabitType struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Code        string    `json:"code" gorm:"uniqueIndex;size:50;not null"`
	Name        string    `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string    `json:"description" gorm:"size:255"`
}

// BeforeCreate sets UUID before creating the record.
func (h *HabitType) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// HabitEntry is one logged occurrence of a habit.
type HabitEntry struct {
	ID        uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID       `json:"userId" gorm:"type:char(36);not null;index:idx_entries_user_time,priority:1"`
	TypeID    uuid.UUID       `json:"typeId" gorm:"type:char(36);not null;index"`
	Value     decimal.Decimal `json:"value" gorm:"type:decimal(12,2);not null"`
	Unit      string          `json:"unit" gorm:"size:32;not null"`
	Notes     *string         `json:"notes" gorm:"type:text"`
	DateTime  time.Time       `json:"dateTime" gorm:"not null;index:idx_entries_user_time,priority:2"`
	CreatedAt time.Time       `json:"createdAt"`

	// Relations
	Type *HabitType `json:"type,omitempty" gorm:"foreignKey:TypeID"`
	User *User      `json:"-" gorm:"foreignKey:UserID"`
}

// MarshalJSON renders Value as a JSON number.
func (e HabitEntry) MarshalJSON() ([]byte, error) {
	type entry HabitEntry
	return json.Marshal(struct {
		entry
		Value json.Number `json:"value"`
	}{entry: entry(e), Value: json.Number(e.Value.String())})
}

// BeforeCreate sets UUID before creating the record.
func (e *HabitEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// EntryFilter narrows a user's entry listing. Nil fields do not filter.
type EntryFilter struct {
	TypeID *uuid.UUID
	From   *time.Time
	To     *time.Time
}
