package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/labstack/echo/v4"

	apperrors "github.com/TPerez13/MuchasVidas/internal/errors"
)

// Bind decodes the request into a T (query parameters for GET, the JSON body
// otherwise) and validates it with the echo instance's Validator.
func Bind[T any](c echo.Context) (T, error) {
	var req T
	if err := c.Bind(&req); err != nil {
		return req, bindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return req, err
	}
	return req, nil
}

func bindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperrors.NewValidationError([]apperrors.FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("%s must be %s", typeErr.Field, jsonKind(typeErr.Type)),
		}}).WithCause(err)
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) && echoErr.Code == http.StatusUnsupportedMediaType {
		return err
	}

	return apperrors.NewHTTPError(http.StatusBadRequest, "invalid request body", apperrors.CodeValidation).WithCause(err)
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.Ptr:
		return jsonKind(t.Elem())
	default:
		return "a valid value"
	}
}
