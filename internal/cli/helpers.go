// Shared helpers for prospyr CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/prospyr/pkg/orm"
	"github.com/mesh-intelligence/prospyr/pkg/resources"
	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// dateLayout is the format --field accepts for date custom fields.
const dateLayout = "2006-01-02"

// validKindsStr lists the resource kinds for error output.
var validKindsStr = strings.Join(resources.Kinds(), ", ")

// newResource returns an empty resource of kind bound to the app's registry.
func (a *app) newResource(kind string) (resources.Resource, error) {
	r, err := resources.New(kind)
	if err != nil {
		return nil, userError(fmt.Errorf("%w (valid: %s)", err, validKindsStr))
	}
	reg, err := a.connections()
	if err != nil {
		return nil, err
	}
	r.UseRegistry(reg)
	return r, nil
}

// loadDefinitions fetches the account's custom field definitions once.
func (a *app) loadDefinitions(ctx context.Context) (types.Definitions, error) {
	if a.definitions != nil {
		return a.definitions, nil
	}
	reg, err := a.connections()
	if err != nil {
		return nil, err
	}
	defs, err := orm.FetchDefinitions(ctx, reg, a.flags.using)
	if err != nil {
		return nil, fmt.Errorf("fetch custom field definitions: %w", err)
	}
	a.definitions = defs
	return defs, nil
}

// readResource reads the record kind/id with custom fields enriched.
func (a *app) readResource(ctx context.Context, kind, idArg string) (resources.Resource, error) {
	id, err := parseID(idArg)
	if err != nil {
		return nil, err
	}
	r, err := a.newResource(kind)
	if err != nil {
		return nil, err
	}
	defs, err := a.loadDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	r.UseDefinitions(defs)
	r.SetID(id)
	if _, err := r.Read(ctx, a.flags.using); err != nil {
		return nil, fmt.Errorf("read %s %d: %w", kind, id, err)
	}
	return r, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, userError(fmt.Errorf("invalid id %q", s))
	}
	return id, nil
}

// parseFieldFlags splits repeated --field name=value flags.
func parseFieldFlags(flags []string) (map[string]string, error) {
	out := make(map[string]string, len(flags))
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, userError(fmt.Errorf("invalid --field %q (want name=value)", f))
		}
		out[name] = value
	}
	return out, nil
}

// fieldValue converts a command-line value into what SetCustomFieldValue
// expects for def. An empty value clears the field.
func fieldValue(def types.CustomFieldDefinition, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	switch def.DataType {
	case types.TypeMultiSelect:
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	case types.TypeDate:
		t, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: want a date like %s", types.ErrInvalidCustomFieldValue, def.Name, dateLayout)
		}
		return t.Unix(), nil
	case types.TypeFloat, types.TypeCurrency, types.TypePercentage:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not a number", types.ErrInvalidCustomFieldValue, def.Name, raw)
		}
		return f, nil
	default:
		return raw, nil
	}
}

// applyFields sets each named custom field on r. Names are matched against
// the account's definitions; unknown names are an error.
func applyFields(r resources.Resource, defs types.Definitions, fields map[string]string) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def, ok := defs.LookupName(name)
		if !ok {
			return userError(fmt.Errorf("unknown custom field %q", name))
		}
		value, err := fieldValue(def, fields[name])
		if err != nil {
			return err
		}
		r.EnsureCustomField(def)
		r.SetCustomFieldValue(name, value)
	}
	return nil
}

// emailOption returns the write option that sets email on kind on update.
// Leads carry a single email object; the other kinds an emails list.
func emailOption(kind, email string) types.WriteOption {
	if isLead(kind) {
		return types.WithEmail(email)
	}
	return types.WithEmails(email)
}

func isLead(kind string) bool {
	return kind == resources.KindLeads || kind == "lead"
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// writeRecord prints r as JSON or as a name line followed by its custom
// field values.
func (a *app) writeRecord(w io.Writer, kind string, r resources.Resource) error {
	raw, err := r.RawData()
	if err != nil {
		return sysError(fmt.Errorf("raw data: %w", err))
	}
	if a.flags.jsonMode {
		return writeJSON(w, raw)
	}

	id, _ := r.Identity()
	fmt.Fprintf(w, "%s %d: %v\n", kind, id, raw["name"])
	for _, def := range a.definitions {
		if v := r.GetCustomFieldValue(def.Name); !types.IsEmptyValue(v) {
			fmt.Fprintf(w, "  %s: %v\n", def.Name, formatValue(v))
		}
	}
	return nil
}

func formatValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(dateLayout)
	}
	return v
}
