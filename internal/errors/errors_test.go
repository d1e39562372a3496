package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"user exists", ErrUserExists, http.StatusConflict, CodeUserExists},
		{"wrapped user exists", fmt.Errorf("create user: %w", ErrUserExists), http.StatusConflict, CodeUserExists},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{"invalid token", fmt.Errorf("%w: expired", ErrInvalidToken), http.StatusUnauthorized, CodeInvalidToken},
		{"missing token", ErrMissingToken, http.StatusUnauthorized, CodeUnauthorized},
		{"user gone", ErrUserNotFound, http.StatusUnauthorized, CodeUnauthorized},
		{"habit type", ErrHabitTypeNotFound, http.StatusNotFound, CodeNotFound},
		{"not found", ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"unknown", errors.New("dial tcp 10.0.0.1:3306: connection refused"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_InternalHidesCause(t *testing.T) {
	cause := errors.New("Error 1146: Table 'app.users' doesn't exist")
	httpErr := MapErrorToHTTP(cause)

	assert.Equal(t, "An unexpected error occurred", httpErr.ToErrorResponse().Message)
	assert.ErrorIs(t, httpErr, cause)
}

func TestMapErrorToHTTP_PassesThroughHTTPError(t *testing.T) {
	validation := NewValidationError([]FieldError{{Field: "value", Message: "value must be a positive number"}})
	httpErr := MapErrorToHTTP(fmt.Errorf("bind: %w", validation))

	assert.Same(t, validation, httpErr)
}

func newTestContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHTTPErrorHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHTTPErrorHandler(logger)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetails bool
	}{
		{
			name:        "validation error carries details",
			err:         NewValidationError([]FieldError{{Field: "email", Message: "email must be a valid email address"}}),
			wantStatus:  http.StatusBadRequest,
			wantCode:    CodeValidation,
			wantMessage: "Validation failed",
			wantDetails: true,
		},
		{
			name:        "echo route not found",
			err:         echo.ErrNotFound,
			wantStatus:  http.StatusNotFound,
			wantCode:    CodeNotFound,
			wantMessage: ErrNotFound.Error(),
		},
		{
			name:        "echo method not allowed",
			err:         echo.ErrMethodNotAllowed,
			wantStatus:  http.StatusNotFound,
			wantCode:    CodeNotFound,
			wantMessage: ErrNotFound.Error(),
		},
		{
			name:        "echo unsupported media type",
			err:         echo.ErrUnsupportedMediaType,
			wantStatus:  http.StatusUnsupportedMediaType,
			wantCode:    CodeValidation,
			wantMessage: "Unsupported Media Type",
		},
		{
			name:        "unclassified error",
			err:         errors.New("pq: relation \"users\" does not exist"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    CodeInternal,
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "recovered panic",
			err:         fmt.Errorf("[PANIC RECOVER] %v", "nil map"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    CodeInternal,
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodGet, "/anything")
			handler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, tt.wantMessage, body["message"])
			_, hasDetails := body["details"]
			assert.Equal(t, tt.wantDetails, hasDetails)
			assert.NotContains(t, rec.Body.String(), "relation")
		})
	}
}

func TestHTTPErrorHandler_HeadHasNoBody(t *testing.T) {
	handler := NewHTTPErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c, rec := newTestContext(http.MethodHead, "/anything")

	handler(ErrNotFound, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}
