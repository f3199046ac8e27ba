// Package resources defines the CRM record types: people, companies, leads,
// opportunities and the account singleton. Each type declares its paths and
// delegates its capabilities to package orm.
package resources

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/mesh-intelligence/prospyr/pkg/connection"
	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// Record carries the state every resource shares: the optional remote id,
// the registry used to resolve connections, and the custom field definitions
// used to enrich responses.
type Record struct {
	ID *int64 `json:"id,omitempty"`

	conns       types.Resolver
	definitions types.Definitions
}

// Identity returns the remote id and whether it is set.
func (r *Record) Identity() (int64, bool) {
	if r.ID == nil {
		return 0, false
	}
	return *r.ID, true
}

// SetID assigns the remote id. Use it to address an existing record.
func (r *Record) SetID(id int64) {
	r.ID = &id
}

// UseRegistry sets the registry connections are resolved from. Without one
// the process-wide connection.Default registry is used.
func (r *Record) UseRegistry(conns types.Resolver) {
	r.conns = conns
}

// UseDefinitions sets the definitions that LoadRaw enriches custom fields with.
func (r *Record) UseDefinitions(defs types.Definitions) {
	r.definitions = defs
}

// Resolver returns the registry in effect for this record.
func (r *Record) Resolver() types.Resolver {
	if r.conns == nil {
		return connection.Default()
	}
	return r.conns
}

// LoadRaw copies data and normalizes its custom fields: the wire key
// custom_field_definition_id becomes id, and name, data type and options are
// filled from the record's definitions.
func (r *Record) LoadRaw(data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}

	raw, ok := data["custom_fields"]
	if !ok || raw == nil {
		return out, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("custom_fields: expected a list, got %T", raw)
	}

	fields := make(types.CustomFields, 0, len(entries))
	for _, item := range entries {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("custom_fields: expected an object, got %T", item)
		}
		var cf types.CustomField
		if err := decode(entry, &cf); err != nil {
			return nil, fmt.Errorf("custom_fields: %w", err)
		}
		if cf.ID == 0 {
			if id, ok := types.AsInt64(entry["custom_field_definition_id"]); ok {
				cf.ID = id
			}
		}
		fields = append(fields, cf)
	}
	r.definitions.Enrich(fields)
	out["custom_fields"] = fields
	return out, nil
}

// CustomFieldMixin gives a resource name-based access to its custom fields.
type CustomFieldMixin struct {
	CustomFields types.CustomFields `json:"custom_fields"`
}

// GetCustomFieldValue returns the logical value of the named custom field.
// See types.CustomFields.Value.
func (m *CustomFieldMixin) GetCustomFieldValue(name string) any {
	return m.CustomFields.Value(name)
}

// SetCustomFieldValue stores value into the named custom field.
// See types.CustomFields.SetValue.
func (m *CustomFieldMixin) SetCustomFieldValue(name string, value any) {
	m.CustomFields.SetValue(name, value)
}

// EnsureCustomField adds an empty field for def if the resource lacks one.
func (m *CustomFieldMixin) EnsureCustomField(def types.CustomFieldDefinition) {
	m.CustomFields.Ensure(def)
}

// rawData renders a resource struct as a fresh JSON-shaped map.
func rawData(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decode assigns data onto target using the json tags. Keys absent from data
// leave their fields untouched; lists present in data replace the old ones.
func decode(data map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}
