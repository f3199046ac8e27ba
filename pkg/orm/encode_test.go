package orm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/prospyr/pkg/types"
)

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    []int64
		wantErr bool
	}{
		{"bracketed", "[1, 2]", []int64{1, 2}, false},
		{"parenthesized", "(3,4)", []int64{3, 4}, false},
		{"bare", "5, 6", []int64{5, 6}, false},
		{"quoted items", "['7', \"8\"]", []int64{7, 8}, false},
		{"trailing comma", "[9,]", []int64{9}, false},
		{"empty list", "[]", []int64{}, false},
		{"empty string", "", []int64{}, false},
		{"nil", nil, []int64{}, false},
		{"decoded json", []any{1.0, 2.0}, []int64{1, 2}, false},
		{"int64 slice", []int64{3}, []int64{3}, false},
		{"word", "[1, red]", nil, true},
		{"double comma", "1,,2", nil, true},
		{"expression", "__import__('os')", nil, true},
		{"non-list", 12, nil, true},
		{"fractional", []any{1.5}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDList(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidCustomFieldValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		name string
		dt   types.DataType
		in   any
		want any
	}{
		{"dropdown id", types.TypeDropdown, 5.0, int64(5)},
		{"dropdown numeric string", types.TypeDropdown, "5", int64(5)},
		{"dropdown empty", types.TypeDropdown, nil, nil},
		{"dropdown zero", types.TypeDropdown, 0.0, nil},
		{"date", types.TypeDate, int64(1700000000), int64(1700000000)},
		{"date empty", types.TypeDate, "", nil},
		{"float", types.TypeFloat, "2.5", 2.5},
		{"float from int", types.TypeFloat, int64(3), 3.0},
		{"float empty", types.TypeFloat, nil, nil},
		{"multiselect", types.TypeMultiSelect, "[1]", []int64{1}},
		{"string passes through", types.TypeString, "x", "x"},
		{"currency passes through", types.TypeCurrency, 12.5, 12.5},
		{"unknown type passes through", types.DataType("Checkbox"), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeValue(tt.dt, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := EncodeValue(types.TypeFloat, "abc")
	assert.ErrorIs(t, err, types.ErrInvalidCustomFieldValue)
}

func TestEncodeCustomFields(t *testing.T) {
	t.Run("nil yields empty list", func(t *testing.T) {
		got, err := EncodeCustomFields(nil)
		require.NoError(t, err)
		assert.Equal(t, []map[string]any{}, got)
	})

	t.Run("non-object entry is rejected", func(t *testing.T) {
		_, err := EncodeCustomFields([]any{"oops"})
		assert.ErrorIs(t, err, types.ErrInvalidCustomFieldValue)
	})

	t.Run("local entries keep their ids", func(t *testing.T) {
		got, err := EncodeCustomFields([]any{
			map[string]any{"id": 3.0, "name": "Colors", "data_type": "MultiSelect", "value": []any{1.0}},
		})
		require.NoError(t, err)
		assert.Equal(t, []map[string]any{{"custom_field_definition_id": int64(3), "value": []int64{1}}}, got)
	})
}
