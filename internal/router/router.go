package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	apperrors "github.com/TPerez13/MuchasVidas/internal/errors"
	"github.com/TPerez13/MuchasVidas/internal/handler"
	"github.com/TPerez13/MuchasVidas/internal/validation"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Habit        *handler.HabitHandler
	Gamification *handler.GamificationHandler
	Notification *handler.NotificationHandler
}

// Options tunes the middleware stack.
type Options struct {
	CORSOrigins []string
	BodyLimit   string
}

// New builds the echo instance: middleware, validator, the error responder,
// public routes and the routes guarded by requireUser.
func New(opts Options, h Handlers, requireUser echo.MiddlewareFunc, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Validator = validation.New()
	e.HTTPErrorHandler = apperrors.NewHTTPErrorHandler(logger)

	if opts.BodyLimit == "" {
		opts.BodyLimit = "1M"
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.ErrorContext(c.Request().Context(), "panic recovered",
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"error", err,
				"stack", string(stack),
			)
			return err
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/swagger/*"
		},
	}))
	e.Use(middleware.BodyLimit(opts.BodyLimit))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	authGroup := e.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)

	// Secured routes
	authGroup.GET("/me", h.Auth.Me, requireUser)

	users := e.Group("/users", requireUser)
	users.GET("/me", h.User.GetProfile)
	users.PATCH("/me", h.User.UpdateProfile)

	habits := e.Group("/habits", requireUser)
	habits.GET("/types", h.Habit.ListTypes)
	habits.POST("/entries", h.Habit.CreateEntry)
	habits.GET("/entries", h.Habit.ListEntries)

	gamification := e.Group("/gamification", requireUser)
	gamification.GET("/achievements", h.Gamification.ListAchievements)
	gamification.GET("/me", h.Gamification.MyAchievements)

	notifications := e.Group("/notifications", requireUser)
	notifications.POST("/schedule", h.Notification.Schedule)
	notifications.GET("", h.Notification.List)

	return e
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(context.Background(), level, "request",
				slog.String("request_id", v.RequestID),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	})
}
