package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/TPerez13/MuchasVidas/internal/app"
	"github.com/TPerez13/MuchasVidas/internal/config"
	"github.com/TPerez13/MuchasVidas/internal/db"
	"github.com/TPerez13/MuchasVidas/internal/logging"
	"github.com/TPerez13/MuchasVidas/internal/seed"
)

func main() {
	cfg, err := config.LoadForTools(os.Args[1:])
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger.Info("starting seed")

	gormDB, err := db.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)
	logger.Info("connected to database")

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(ctx, gormDB); err != nil {
		return err
	}
	logger.Info("database migrations completed")

	catalog, err := seed.DefaultCatalog()
	if err != nil {
		return err
	}

	repos := app.GormRepositories(gormDB)
	result, err := seed.Apply(ctx, repos.Habits, repos.Achievements, catalog)
	if err != nil {
		return err
	}

	logger.Info("seed completed",
		"habit_types", result.HabitTypes,
		"achievements", result.Achievements,
	)
	return nil
}
