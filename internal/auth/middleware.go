package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "github.com/TPerez13/MuchasVidas/internal/errors"
	"github.com/TPerez13/MuchasVidas/internal/model"
)

const userIDContextKey = "auth.user_id"

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// IdentityResolver loads the current state of the user a token names.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*model.Identity, error)
}

// RequireUser returns the middleware guarding protected routes. A request
// without a bearer token fails with ErrMissingToken, a token that does not
// verify fails with ErrInvalidToken, and a token whose user no longer exists
// fails with ErrUserNotFound. On success the identity is stored in the
// request context and handlers read it with CurrentIdentity.
func RequireUser(tokens TokenVerifier, users IdentityResolver, logger *slog.Logger) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  userIDContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return tokens.Verify(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			ctx := c.Request().Context()
			switch {
			case errors.Is(err, ErrTokenExpired):
				logger.InfoContext(ctx, "bearer token rejected", "reason", "expired", "path", c.Path())
				return ErrTokenExpired
			case errors.Is(err, apperrors.ErrInvalidToken):
				logger.WarnContext(ctx, "bearer token rejected", "reason", "invalid", "path", c.Path(), "error", err)
				return ErrTokenInvalid
			default:
				return apperrors.ErrMissingToken
			}
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(resolveIdentity(users, next))
	}
}

func resolveIdentity(users IdentityResolver, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := c.Get(userIDContextKey).(uuid.UUID)
		if !ok {
			return apperrors.ErrMissingToken
		}

		req := c.Request()
		identity, err := users.Resolve(req.Context(), userID)
		if err != nil {
			return err
		}

		c.SetRequest(req.WithContext(WithIdentity(req.Context(), identity)))
		return next(c)
	}
}
