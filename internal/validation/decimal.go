package validation

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/shopspring/decimal"
)

// DecimalPlaces is the precision quantities are stored with.
const DecimalPlaces = 2

// Decimal is a decimal.Decimal request field. A value that does not decode
// as a number fails as a *json.UnmarshalTypeError, so the binder can name
// the offending field.
type Decimal struct {
	decimal.Decimal
}

// UnmarshalJSON accepts JSON numbers and quoted numeric strings.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	if err := d.Decimal.UnmarshalJSON(data); err != nil {
		return &json.UnmarshalTypeError{
			Value: jsonValueKind(data),
			Type:  reflect.TypeOf(float64(0)),
		}
	}
	return nil
}

func jsonValueKind(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "value"
	}
	switch data[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "bool"
	default:
		return "number"
	}
}

// decimalValue hands decimals to the rules as float64, rounded to the stored
// precision so that positive and lt see what will be persisted.
func decimalValue(field reflect.Value) interface{} {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		return d.Round(DecimalPlaces).InexactFloat64()
	case Decimal:
		return d.Round(DecimalPlaces).InexactFloat64()
	}
	return nil
}
