// Package memrepo provides in-memory implementations of the repository
// interfaces. They honour the same uniqueness rules and orderings as the
// GORM repositories and are used to run the HTTP stack without a database.
package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/TPerez13/MuchasVidas/internal/errors"
	"github.com/TPerez13/MuchasVidas/internal/model"
	"github.com/TPerez13/MuchasVidas/internal/repository"
)

var (
	_ repository.UserRepository         = (*Users)(nil)
	_ repository.HabitRepository        = (*Habits)(nil)
	_ repository.AchievementRepository  = (*Achievements)(nil)
	_ repository.NotificationRepository = (*Notifications)(nil)
)

func now() time.Time { return time.Now().UTC() }

// Users is an in-memory UserRepository.
type Users struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
}

// NewUsers creates an empty user store.
func NewUsers() *Users {
	return &Users{users: make(map[uuid.UUID]model.User)}
}

func (r *Users) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(user.Email, uuid.Nil) {
		return apperrors.ErrUserExists
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *Users) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return nil
	}
	if r.emailTaken(user.Email, user.ID) {
		return apperrors.ErrUserExists
	}
	stored.Email = user.Email
	stored.Name = user.Name
	stored.UpdatedAt = now()
	r.users[user.ID] = stored
	return nil
}

func (r *Users) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &user, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// Delete removes a user, simulating an account deleted after a token was issued.
func (r *Users) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

func (r *Users) emailTaken(email string, except uuid.UUID) bool {
	for id, user := range r.users {
		if id != except && user.Email == email {
			return true
		}
	}
	return false
}

// Habits is an in-memory HabitRepository.
type Habits struct {
	mu      sync.RWMutex
	types   map[uuid.UUID]model.HabitType
	entries []model.HabitEntry
}

// NewHabits creates an empty habit store.
func NewHabits() *Habits {
	return &Habits{types: make(map[uuid.UUID]model.HabitType)}
}

func (r *Habits) ListTypes(_ context.Context) ([]model.HabitType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]model.HabitType, 0, len(r.types))
	for _, t := range r.types {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}

func (r *Habits) FindTypeByID(_ context.Context, id uuid.UUID) (*model.HabitType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[id]
	if !ok {
		return nil, apperrors.ErrHabitTypeNotFound
	}
	return &t, nil
}

func (r *Habits) FindTypeByCode(_ context.Context, code string) (*model.HabitType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.types {
		if t.Code == code {
			return &t, nil
		}
	}
	return nil, apperrors.ErrHabitTypeNotFound
}

func (r *Habits) UpsertType(_ context.Context, habitType *model.HabitType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.types {
		if t.Code == habitType.Code {
			habitType.ID = id
			r.types[id] = *habitType
			return nil
		}
	}
	if habitType.ID == uuid.Nil {
		habitType.ID = uuid.New()
	}
	r.types[habitType.ID] = *habitType
	return nil
}

func (r *Habits) CreateEntry(_ context.Context, entry *model.HabitEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = now()
	stored := *entry
	stored.Type = nil
	stored.User = nil
	r.entries = append(r.entries, stored)
	return nil
}

func (r *Habits) ListEntries(_ context.Context, userID uuid.UUID, filter model.EntryFilter) ([]model.HabitEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]model.HabitEntry, 0)
	for _, e := range r.entries {
		switch {
		case e.UserID != userID:
			continue
		case filter.TypeID != nil && e.TypeID != *filter.TypeID:
			continue
		case filter.From != nil && e.DateTime.Before(*filter.From):
			continue
		case filter.To != nil && e.DateTime.After(*filter.To):
			continue
		}
		if t, ok := r.types[e.TypeID]; ok {
			e.Type = &t
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].DateTime.After(entries[j].DateTime) })
	return entries, nil
}

func (r *Habits) ListEntryTimes(_ context.Context, userID uuid.UUID, typeID *uuid.UUID, since time.Time) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var times []time.Time
	for _, e := range r.entries {
		if e.UserID != userID || e.DateTime.Before(since) {
			continue
		}
		if typeID != nil && e.TypeID != *typeID {
			continue
		}
		times = append(times, e.DateTime)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].After(times[j]) })
	return times, nil
}

func (r *Habits) CountEntries(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, e := range r.entries {
		if e.UserID == userID {
			count++
		}
	}
	return count, nil
}

// Achievements is an in-memory AchievementRepository.
type Achievements struct {
	mu           sync.RWMutex
	achievements map[uuid.UUID]model.Achievement
	awards       []model.UserAchievement
}

// NewAchievements creates an empty achievement store.
func NewAchievements() *Achievements {
	return &Achievements{achievements: make(map[uuid.UUID]model.Achievement)}
}

func (r *Achievements) List(_ context.Context) ([]model.Achievement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]model.Achievement, 0, len(r.achievements))
	for _, a := range r.achievements {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Points != list[j].Points {
			return list[i].Points < list[j].Points
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

func (r *Achievements) Upsert(_ context.Context, achievement *model.Achievement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, a := range r.achievements {
		if a.Name == achievement.Name {
			achievement.ID = id
			r.achievements[id] = *achievement
			return nil
		}
	}
	if achievement.ID == uuid.Nil {
		achievement.ID = uuid.New()
	}
	r.achievements[achievement.ID] = *achievement
	return nil
}

func (r *Achievements) ListForUser(_ context.Context, userID uuid.UUID) ([]model.UserAchievement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	awards := make([]model.UserAchievement, 0)
	for _, ua := range r.awards {
		if ua.UserID != userID {
			continue
		}
		if a, ok := r.achievements[ua.AchievementID]; ok {
			ua.Achievement = &a
		}
		awards = append(awards, ua)
	}
	sort.SliceStable(awards, func(i, j int) bool { return awards[i].ObtainedAt.After(awards[j].ObtainedAt) })
	return awards, nil
}

func (r *Achievements) ListObtainedIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []uuid.UUID
	for _, ua := range r.awards {
		if ua.UserID == userID {
			ids = append(ids, ua.AchievementID)
		}
	}
	return ids, nil
}

func (r *Achievements) Award(_ context.Context, award *model.UserAchievement) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ua := range r.awards {
		if ua.UserID == award.UserID && ua.AchievementID == award.AchievementID {
			return false, nil
		}
	}
	if award.ID == uuid.Nil {
		award.ID = uuid.New()
	}
	stored := *award
	stored.Achievement = nil
	stored.User = nil
	r.awards = append(r.awards, stored)
	return true, nil
}

// Notifications is an in-memory NotificationRepository.
type Notifications struct {
	mu            sync.RWMutex
	notifications []model.Notification
}

// NewNotifications creates an empty notification store.
func NewNotifications() *Notifications {
	return &Notifications{}
}

func (r *Notifications) Create(_ context.Context, notification *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	notification.CreatedAt = now()
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *Notifications) ListForUser(_ context.Context, userID uuid.UUID) ([]model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]model.Notification, 0)
	for _, n := range r.notifications {
		if n.UserID == userID {
			list = append(list, n)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].ScheduledFor.After(list[j].ScheduledFor) })
	return list, nil
}
