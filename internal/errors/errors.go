package errors

import (
	"errors"
	"net/http"
)

// Error codes exposed to clients. Clients branch on these, so they never change.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserExists         = "USER_EXISTS"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

var (
	// ErrUserExists is returned when an email is already registered.
	ErrUserExists = errors.New("user with this email already exists")
	// ErrInvalidCredentials is returned for any email/password mismatch.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when a user id no longer maps to an account.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidToken is the class of every bearer token verification failure.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrMissingToken is returned when a protected route is called without a bearer token.
	ErrMissingToken = errors.New("you are not logged in, please log in to get access")
	// ErrHabitTypeNotFound is returned when an entry references an unknown habit type.
	ErrHabitTypeNotFound = errors.New("habit type not found")
	// ErrNotFound is a generic missing resource.
	ErrNotFound = errors.New("the requested resource was not found")
)

// FieldError names one failing field of a payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse represents the uniform error body.
type ErrorResponse struct {
	Code    string      `json:"code" example:"VALIDATION_ERROR"`
	Message string      `json:"message" example:"Validation failed"`
	Details interface{} `json:"details,omitempty"`
}

// HTTPError represents a classified failure with its status code.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
	Details    interface{}
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// WithDetails attaches client-visible details.
func (e *HTTPError) WithDetails(details interface{}) *HTTPError {
	e.Details = details
	return e
}

// WithCause attaches the underlying error. It is logged, never rendered.
func (e *HTTPError) WithCause(err error) *HTTPError {
	e.Err = err
	return e
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// NewValidationError builds a VALIDATION_ERROR listing every failing field.
func NewValidationError(fields []FieldError) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, "Validation failed", CodeValidation).WithDetails(fields)
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unclassified
// becomes a generic INTERNAL_SERVER_ERROR that keeps the cause for logging.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, ErrUserExists):
		return NewHTTPError(http.StatusConflict, ErrUserExists.Error(), CodeUserExists)
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), CodeInvalidCredentials)
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error(), CodeInvalidToken).WithCause(err)
	case errors.Is(err, ErrMissingToken):
		return NewHTTPError(http.StatusUnauthorized, ErrMissingToken.Error(), CodeUnauthorized)
	case errors.Is(err, ErrUserNotFound):
		// Reached only through the authorization gate: the token's user is gone.
		return NewHTTPError(http.StatusUnauthorized, "the user belonging to this token no longer exists", CodeUnauthorized)
	case errors.Is(err, ErrHabitTypeNotFound):
		return NewHTTPError(http.StatusNotFound, ErrHabitTypeNotFound.Error(), CodeNotFound)
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, ErrNotFound.Error(), CodeNotFound)
	default:
		return NewHTTPError(http.StatusInternalServerError, "An unexpected error occurred", CodeInternal).WithCause(err)
	}
}
