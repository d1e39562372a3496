package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/TPerez13/MuchasVidas/docs" // swagger docs
	"github.com/TPerez13/MuchasVidas/internal/app"
	"github.com/TPerez13/MuchasVidas/internal/cache"
	"github.com/TPerez13/MuchasVidas/internal/config"
	"github.com/TPerez13/MuchasVidas/internal/db"
	"github.com/TPerez13/MuchasVidas/internal/logging"
	"github.com/TPerez13/MuchasVidas/internal/seed"
)

// @title MuchasVidas API
// @version 1.0
// @description Habit tracking API with JWT authentication, habit entries, achievements and scheduled notifications.
// @host localhost:3000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			logger.Warn("close database", "error", err)
		}
	}()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, gormDB); err != nil {
			return err
		}
		logger.Info("database migrations completed")
	}

	repos := app.GormRepositories(gormDB)

	if cfg.SeedOnStart {
		catalog, err := seed.DefaultCatalog()
		if err != nil {
			return err
		}
		result, err := seed.Apply(ctx, repos.Habits, repos.Achievements, catalog)
		if err != nil {
			return err
		}
		logger.Info("reference data seeded", "habit_types", result.HabitTypes, "achievements", result.Achievements)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, continuing without cache", "addr", cfg.RedisAddr, "error", err)
	}
	defer func() {
		if err := cacheClient.Close(); err != nil {
			logger.Warn("close redis", "error", err)
		}
	}()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e, err := app.New(cfg, repos, cacheClient, logger)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server listening", "addr", addr, "swagger", "/swagger/index.html")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownWait)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWait)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
