package auth

import (
	"context"

	"github.com/labstack/echo/v4"

	apperrors "github.com/TPerez13/MuchasVidas/internal/errors"
	"github.com/TPerez13/MuchasVidas/internal/model"
)

type identityKey struct{}

// WithIdentity returns a child context carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext extracts the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*model.Identity)
	return identity, ok && identity != nil
}

// CurrentIdentity returns the identity of the request's authenticated user.
// It fails with ErrMissingToken when the route was not behind RequireUser.
func CurrentIdentity(c echo.Context) (*model.Identity, error) {
	identity, ok := IdentityFromContext(c.Request().Context())
	if !ok {
		return nil, apperrors.ErrMissingToken
	}
	return identity, nil
}
