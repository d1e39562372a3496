package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// NewHTTPErrorHandler returns the echo error handler that renders every
// failure returned by a handler or middleware as an ErrorResponse.
func NewHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := classify(err)
		ctx := c.Request().Context()
		attrs := []any{
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"method", c.Request().Method,
			"path", c.Path(),
			"status", httpErr.StatusCode,
			"code", httpErr.Code,
		}
		if httpErr.StatusCode >= http.StatusInternalServerError {
			logger.ErrorContext(ctx, "request failed", append(attrs, "error", err)...)
		} else {
			logger.DebugContext(ctx, "request rejected", append(attrs, "error", err)...)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.StatusCode)
		} else {
			err = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if err != nil {
			logger.ErrorContext(ctx, "write error response", "error", err)
		}
	}
}

// classify folds echo's own errors (routing, binding, recovered panics)
// into the application taxonomy before falling back to MapErrorToHTTP.
func classify(err error) *HTTPError {
	var appErr *HTTPError
	if errors.As(err, &appErr) {
		return appErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		message := fmt.Sprint(echoErr.Message)
		switch {
		case echoErr.Code == http.StatusNotFound || echoErr.Code == http.StatusMethodNotAllowed:
			return NewHTTPError(http.StatusNotFound, ErrNotFound.Error(), CodeNotFound)
		case echoErr.Code == http.StatusUnauthorized:
			return NewHTTPError(http.StatusUnauthorized, message, CodeUnauthorized)
		case echoErr.Code >= http.StatusBadRequest && echoErr.Code < http.StatusInternalServerError:
			return NewHTTPError(echoErr.Code, message, CodeValidation)
		default:
			return NewHTTPError(http.StatusInternalServerError, "An unexpected error occurred", CodeInternal).WithCause(err)
		}
	}

	return MapErrorToHTTP(err)
}
