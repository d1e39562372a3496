package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Achievement criteria understood by the evaluator.
const (
	CriterionFirstEntry       = "FIRST_ENTRY"
	CriterionSevenDayStreak   = "SEVEN_DAY_STREAK"
	CriterionFiveDayHydration = "FIVE_DAY_HYDRATION"
)

// Achievement is a reward users unlock by meeting its criterion.
type Achievement struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string    `json:"description" gorm:"size:255"`
	Criterion   string    `json:"criterion" gorm:"size:50;not null;index"`
	Points      int       `json:"points" gorm:"not null;default:0"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// UserAchievement records an achievement obtained by a user. Points are
// copied at award time so later catalog changes do not rewrite history.
type UserAchievement struct {
	ID            uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID        uuid.UUID `json:"userId" gorm:"type:char(36);not null;uniqueIndex:idx_user_achievement,priority:1"`
	AchievementID uuid.UUID `json:"achievementId" gorm:"type:char(36);not null;uniqueIndex:idx_user_achievement,priority:2"`
	Points        int       `json:"points" gorm:"not null;default:0"`
	ObtainedAt    time.Time `json:"obtainedAt" gorm:"not null;index"`

	// Relations
	Achievement *Achievement `json:"achievement,omitempty" gorm:"foreignKey:AchievementID"`
	User        *User        `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (ua *UserAchievement) BeforeCreate(tx *gorm.DB) error {
	if ua.ID == uuid.Nil {
		ua.ID = uuid.New()
	}
	return nil
}
