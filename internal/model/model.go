// Package model holds the GORM-mapped domain records.
package model

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&HabitType{},
		&HabitEntry{},
		&Achievement{},
		&UserAchievement{},
		&Notification{},
	}
}
