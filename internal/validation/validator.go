// Package validation checks inbound payloads against the validate tags of
// request structs and reports every failing field at once.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "github.com/TPerez13/MuchasVidas/internal/errors"
)

// TimeLayout is the accepted wire format for instants (ISO-8601 / RFC 3339,
// fractional seconds and numeric offsets allowed).
const TimeLayout = time.RFC3339Nano

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(fieldName)
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, Decimal{})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("iso8601", isISO8601)
	_ = v.RegisterValidation("positive", isPositive)

	return &Validator{validate: v}
}

// Validate runs every rule on i and returns a VALIDATION_ERROR listing all
// violations, or nil.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return fmt.Errorf("validate %T: %w", i, err)
	}

	fields := make([]apperrors.FieldError, 0, len(violations))
	for _, fe := range violations {
		fields = append(fields, apperrors.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return apperrors.NewValidationError(fields)
}

// ParseTime parses a value that passed the iso8601 rule. The result is in UTC.
func ParseTime(value string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "query", "param"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func isISO8601(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := time.Parse(TimeLayout, fl.Field().String())
	return err == nil
}

func isPositive(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return field.Int() > 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return field.Uint() > 0
	case reflect.Float32, reflect.Float64:
		return field.Float() > 0
	case reflect.Struct:
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.Round(DecimalPlaces).IsPositive()
		}
	}
	return false
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "uuid", "uuid4":
		return field + " must be a valid UUID"
	case "positive", "gt":
		return field + " must be a positive number"
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "iso8601":
		return field + " must be an ISO-8601 date-time"
	default:
		return fmt.Sprintf("%s failed the %s rule", field, fe.Tag())
	}
}
