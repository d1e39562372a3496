// Package app assembles services, handlers and the router from a config and
// injected repositories. cmd/server wires GORM repositories into it; tests
// wire in-memory ones.
package app

import (
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/TPerez13/MuchasVidas/internal/auth"
	"github.com/TPerez13/MuchasVidas/internal/cache"
	"github.com/TPerez13/MuchasVidas/internal/config"
	"github.com/TPerez13/MuchasVidas/internal/handler"
	"github.com/TPerez13/MuchasVidas/internal/repository"
	"github.com/TPerez13/MuchasVidas/internal/router"
	"github.com/TPerez13/MuchasVidas/internal/service"
)

// Repositories are the persistence dependencies of the API.
type Repositories struct {
	Users         repository.UserRepository
	Habits        repository.HabitRepository
	Achievements  repository.AchievementRepository
	Notifications repository.NotificationRepository
}

// GormRepositories builds the GORM-backed repositories.
func GormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:         repository.NewUserRepository(db),
		Habits:        repository.NewHabitRepository(db),
		Achievements:  repository.NewAchievementRepository(db),
		Notifications: repository.NewNotificationRepository(db),
	}
}

// New builds the HTTP server. cacheClient may be nil.
func New(cfg *config.Config, repos Repositories, cacheClient *cache.Client, logger *slog.Logger) (*echo.Echo, error) {
	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	// Initialize services
	userService := service.NewUserService(repos.Users)
	authService, err := service.NewAuthService(repos.Users, hasher, jwtService)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	achievementService := service.NewAchievementService(repos.Achievements, repos.Habits, cacheClient, logger)
	habitService := service.NewHabitService(repos.Habits, achievementService, cacheClient, logger)
	notificationService := service.NewNotificationService(repos.Notifications)

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService),
		Habit:        handler.NewHabitHandler(habitService),
		Gamification: handler.NewGamificationHandler(achievementService),
		Notification: handler.NewNotificationHandler(notificationService),
	}

	requireUser := auth.RequireUser(jwtService, userService, logger)
	return router.New(router.Options{CORSOrigins: cfg.CORSOrigins}, handlers, requireUser, logger), nil
}
