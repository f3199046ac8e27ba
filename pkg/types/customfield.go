package types

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// DataType is a custom field definition's declared type, as spelled on the wire.
type DataType string

// Custom field data types.
const (
	TypeString      DataType = "String"
	TypeText        DataType = "Text"
	TypeFloat       DataType = "Float"
	TypeURL         DataType = "URL"
	TypePercentage  DataType = "Percentage"
	TypeCurrency    DataType = "Currency"
	TypeDropdown    DataType = "Dropdown"
	TypeMultiSelect DataType = "MultiSelect"
	TypeDate        DataType = "Date"
)

// scalarTypes hold their value unchanged in both directions.
var scalarTypes = map[DataType]bool{
	TypeString:     true,
	TypeText:       true,
	TypeFloat:      true,
	TypeURL:        true,
	TypePercentage: true,
	TypeCurrency:   true,
}

// IsScalar reports whether values of dt are stored without translation.
func (dt DataType) IsScalar() bool {
	return scalarTypes[dt]
}

// Option is one choice of a dropdown or multiselect field.
type Option struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CustomField is a typed, user-defined attribute on a resource. ID is the
// custom field definition id. Value holds a scalar, an option id (dropdown),
// a list of option ids (multiselect) or a Unix timestamp (date).
type CustomField struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name,omitempty"`
	DataType DataType `json:"data_type,omitempty"`
	Value    any      `json:"value"`
	Options  []Option `json:"options,omitempty"`
}

// optionName returns the name of the option whose id equals v.
func (f CustomField) optionName(v any) (string, bool) {
	id, ok := AsInt64(v)
	if !ok {
		return "", false
	}
	for _, o := range f.Options {
		if o.ID == id {
			return o.Name, true
		}
	}
	return "", false
}

// CustomFields is a resource's ordered custom field list.
type CustomFields []CustomField

// Value returns the logical value of the field called name. Dropdowns decode
// to the option name, multiselects to comma-joined option names, and dates to
// the local calendar date. Returns "" when no field matches or the value is
// empty. When several fields share a name the last one wins.
func (cf CustomFields) Value(name string) any {
	var value any = ""
	for _, field := range cf {
		if field.Name != name || IsEmptyValue(field.Value) {
			continue
		}
		switch {
		case field.DataType.IsScalar():
			value = field.Value
		case field.DataType == TypeDropdown:
			if n, ok := field.optionName(field.Value); ok {
				value = n
			}
		case field.DataType == TypeMultiSelect:
			var names []string
			for _, v := range listValues(field.Value) {
				if n, ok := field.optionName(v); ok {
					names = append(names, n)
				}
			}
			value = strings.Join(names, ",")
		case field.DataType == TypeDate:
			if ts, ok := AsInt64(field.Value); ok {
				t := time.Unix(ts, 0).Local()
				value = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
			}
		}
	}
	return value
}

// SetValue stores value into every field called name, applying the inverse
// of Value. nil clears the field. Dropdowns match an option name ignoring case
// and surrounding space; multiselects take a []string of exact option names.
// Dates are stored as given. Fields are mutated in place; names that match no
// field are ignored.
func (cf CustomFields) SetValue(name string, value any) {
	for i, field := range cf {
		if field.Name != name {
			continue
		}
		switch {
		case value == nil:
			cf[i].Value = nil
		case field.DataType.IsScalar():
			cf[i].Value = value
		case field.DataType == TypeDropdown:
			s, ok := value.(string)
			if !ok {
				continue
			}
			want := strings.ToLower(strings.TrimSpace(s))
			for _, o := range field.Options {
				if strings.ToLower(strings.TrimSpace(o.Name)) == want {
					cf[i].Value = o.ID
				}
			}
		case field.DataType == TypeMultiSelect:
			ids := []int64{}
			for _, v := range stringValues(value) {
				for _, o := range field.Options {
					if o.Name == v {
						ids = append(ids, o.ID)
					}
				}
			}
			cf[i].Value = ids
		case field.DataType == TypeDate:
			cf[i].Value = value
		}
	}
}

// Ensure appends an empty field for def unless a field with its id is
// already present. Records only carry the fields they were given, so a field
// must be ensured before it can be set by name.
func (cf *CustomFields) Ensure(def CustomFieldDefinition) {
	for _, field := range *cf {
		if field.ID == def.ID {
			return
		}
	}
	*cf = append(*cf, CustomField{
		ID:       def.ID,
		Name:     def.Name,
		DataType: def.DataType,
		Options:  def.Options,
	})
}

// CustomFieldDefinition describes a custom field configured on the account.
type CustomFieldDefinition struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	DataType DataType `json:"data_type"`
	Options  []Option `json:"options,omitempty"`
}

// Definitions is the account's set of custom field definitions.
type Definitions []CustomFieldDefinition

// Lookup returns the definition with the given id.
func (d Definitions) Lookup(id int64) (CustomFieldDefinition, bool) {
	for _, def := range d {
		if def.ID == id {
			return def, true
		}
	}
	return CustomFieldDefinition{}, false
}

// LookupName returns the definition called name.
func (d Definitions) LookupName(name string) (CustomFieldDefinition, bool) {
	for _, def := range d {
		if def.Name == name {
			return def, true
		}
	}
	return CustomFieldDefinition{}, false
}

// Enrich fills name, data type and options from the matching definition.
// Fields without a known definition are left as they are.
func (d Definitions) Enrich(fields CustomFields) {
	for i := range fields {
		def, ok := d.Lookup(fields[i].ID)
		if !ok {
			continue
		}
		fields[i].Name = def.Name
		fields[i].DataType = def.DataType
		fields[i].Options = def.Options
	}
}

// AsInt64 converts the numeric shapes a decoded JSON value can take, and
// numeric strings, to int64.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// IsEmptyValue reports whether v counts as unset: nil, a zero scalar, or an
// empty list or string.
func IsEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len() == 0
	default:
		return rv.IsZero()
	}
}

func listValues(v any) []any {
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

func stringValues(v any) []string {
	if ss, ok := v.([]string); ok {
		return ss
	}
	var out []string
	for _, item := range listValues(v) {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
