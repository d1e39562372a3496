package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHabitEntry_MarshalValueAsNumber(t *testing.T) {
	tests := []struct {
		name  string
		value decimal.Decimal
		want  string
	}{
		{name: "whole", value: decimal.NewFromInt(250), want: `250`},
		{name: "fraction", value: decimal.RequireFromString("250.5"), want: `250.5`},
		{name: "cents", value: decimal.RequireFromString("0.01"), want: `0.01`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := HabitEntry{
				ID:       uuid.New(),
				UserID:   uuid.New(),
				TypeID:   uuid.New(),
				Value:    tt.value,
				Unit:     "ml",
				DateTime: time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
			}

			raw, err := json.Marshal(entry)
			require.NoError(t, err)
			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(raw, &fields))
			assert.Equal(t, tt.want, string(fields["value"]))

			var decoded HabitEntry
			require.NoError(t, json.Unmarshal(raw, &decoded))
			assert.True(t, tt.value.Equal(decoded.Value))
			assert.Equal(t, entry.ID, decoded.ID)
			assert.Equal(t, "ml", decoded.Unit)
		})
	}
}

func TestHabitEntry_MarshalLeavesDecimalDefaults(t *testing.T) {
	raw, err := json.Marshal([]HabitEntry{{Value: decimal.NewFromInt(3)}})
	require.NoError(t, err)
	var fields []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	require.Len(t, fields, 1)
	assert.Equal(t, `3`, string(fields[0]["value"]))

	assert.False(t, decimal.MarshalJSONWithoutQuotes)
	plain, err := json.Marshal(decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, `"3"`, string(plain))
}
