package orm

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// EncodeCustomFields converts raw custom field entries (maps carrying id,
// data_type and value) into the {custom_field_definition_id, value} pairs an
// update expects. Entries without a value key encode as "". Every entry that
// cannot be encoded is reported; the error wraps ErrInvalidCustomFieldValue.
func EncodeCustomFields(raw any) ([]map[string]any, error) {
	out := []map[string]any{}
	var result *multierror.Error

	for _, item := range sliceOf(raw) {
		entry, ok := item.(map[string]any)
		if !ok {
			result = multierror.Append(result, fmt.Errorf("%w: entry %T is not an object", types.ErrInvalidCustomFieldValue, item))
			continue
		}
		id := entry["id"]
		if n, ok := types.AsInt64(id); ok {
			id = n
		}

		value, present := entry["value"]
		if !present {
			out = append(out, map[string]any{"custom_field_definition_id": id, "value": ""})
			continue
		}

		dt, _ := entry["data_type"].(string)
		encoded, err := EncodeValue(types.DataType(dt), value)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("custom field %v: %w", id, err))
			continue
		}
		out = append(out, map[string]any{"custom_field_definition_id": id, "value": encoded})
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeValue converts one local custom field value to its wire shape.
// Dropdowns and dates become an integer, multiselects a list of integers and
// floats a float; empty values of those types become nil. Other types pass
// through unchanged.
func EncodeValue(dt types.DataType, value any) (any, error) {
	switch dt {
	case types.TypeDropdown, types.TypeDate:
		if types.IsEmptyValue(value) {
			return nil, nil
		}
		n, ok := types.AsInt64(value)
		if !ok {
			return nil, fmt.Errorf("%w: %v is not an integer", types.ErrInvalidCustomFieldValue, value)
		}
		return n, nil
	case types.TypeMultiSelect:
		return ParseIDList(value)
	case types.TypeFloat:
		if types.IsEmptyValue(value) {
			return nil, nil
		}
		f, ok := asFloat64(value)
		if !ok {
			return nil, fmt.Errorf("%w: %v is not a number", types.ErrInvalidCustomFieldValue, value)
		}
		return f, nil
	default:
		return value, nil
	}
}

// ParseIDList reads a list of option ids. It accepts numeric slices and
// textual lists such as "[1, 2]", "(1, 2)", "1,2" or "['1', '2']". nil and
// the empty string yield an empty list.
func ParseIDList(value any) ([]int64, error) {
	ids := []int64{}
	if value == nil {
		return ids, nil
	}
	if s, ok := value.(string); ok {
		return parseTextList(s)
	}

	items := sliceOf(value)
	if items == nil {
		return nil, fmt.Errorf("%w: %T is not a list", types.ErrInvalidCustomFieldValue, value)
	}
	for _, item := range items {
		n, ok := types.AsInt64(item)
		if !ok {
			return nil, fmt.Errorf("%w: list item %v is not an integer", types.ErrInvalidCustomFieldValue, item)
		}
		ids = append(ids, n)
	}
	return ids, nil
}

func parseTextList(s string) ([]int64, error) {
	ids := []int64{}
	body := strings.TrimSpace(s)
	if len(body) >= 2 {
		first, last := body[0], body[len(body)-1]
		if (first == '[' && last == ']') || (first == '(' && last == ')') {
			body = strings.TrimSpace(body[1 : len(body)-1])
		}
	}
	if body == "" {
		return ids, nil
	}

	tokens := strings.Split(body, ",")
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" && i == len(tokens)-1 {
			break // trailing comma
		}
		tok = strings.Trim(tok, `'"`)
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a list of integers", types.ErrInvalidCustomFieldValue, s)
		}
		ids = append(ids, n)
	}
	return ids, nil
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func sliceOf(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
