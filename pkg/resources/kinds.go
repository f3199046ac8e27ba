package resources

import (
	"fmt"
	"sort"

	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// Resource is a full-lifecycle record with custom fields.
type Resource interface {
	types.Model
	types.ReadWritable

	GetCustomFieldValue(name string) any
	SetCustomFieldValue(name string, value any)
	EnsureCustomField(def types.CustomFieldDefinition)
	SetID(id int64)
	UseRegistry(conns types.Resolver)
	UseDefinitions(defs types.Definitions)
}

// Resource kind names, matching the API collection names.
const (
	KindPeople        = "people"
	KindCompanies     = "companies"
	KindLeads         = "leads"
	KindOpportunities = "opportunities"
)

var kinds = map[string]func() Resource{
	KindPeople:        func() Resource { return &Person{} },
	KindCompanies:     func() Resource { return &Company{} },
	KindLeads:         func() Resource { return &Lead{} },
	KindOpportunities: func() Resource { return &Opportunity{} },
}

// aliases maps singular names onto kinds.
var aliases = map[string]string{
	"person":      KindPeople,
	"company":     KindCompanies,
	"lead":        KindLeads,
	"opportunity": KindOpportunities,
}

// New returns an empty resource of the named kind. Singular names are accepted.
// Returns ErrUnknownResource for anything else.
func New(kind string) (Resource, error) {
	if k, ok := aliases[kind]; ok {
		kind = k
	}
	ctor, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownResource, kind)
	}
	return ctor(), nil
}

// Kinds returns the resource kind names in sorted order.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
