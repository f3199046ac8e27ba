package resources

import (
	"context"

	"github.com/mesh-intelligence/prospyr/pkg/orm"
	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// Person is a contact.
type Person struct {
	Record
	CustomFieldMixin

	Name          string        `json:"name"`
	Prefix        string        `json:"prefix,omitempty"`
	FirstName     string        `json:"first_name,omitempty"`
	MiddleName    string        `json:"middle_name,omitempty"`
	LastName      string        `json:"last_name,omitempty"`
	Suffix        string        `json:"suffix,omitempty"`
	Title         string        `json:"title,omitempty"`
	CompanyID     *int64        `json:"company_id,omitempty"`
	CompanyName   string        `json:"company_name,omitempty"`
	AssigneeID    *int64        `json:"assignee_id,omitempty"`
	ContactTypeID *int64        `json:"contact_type_id,omitempty"`
	Details       string        `json:"details,omitempty"`
	Address       *Address      `json:"address,omitempty"`
	Emails        []Email       `json:"emails,omitempty"`
	PhoneNumbers  []PhoneNumber `json:"phone_numbers,omitempty"`
	Socials       []Social      `json:"socials,omitempty"`
	Websites      []Website     `json:"websites,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
	DateCreated   int64         `json:"date_created,omitempty"`
	DateModified  int64         `json:"date_modified,omitempty"`
}

var personMeta = types.Meta{
	CreatePath: "people/",
	DetailPath: "people/{id}/",
}

var _ types.ReadWritable = (*Person)(nil)

func (p *Person) Meta() types.Meta { return personMeta }

func (p *Person) RawData() (map[string]any, error) { return rawData(p) }

func (p *Person) SetFields(data map[string]any) error { return decode(data, p) }

func (p *Person) Create(ctx context.Context, using string, opts ...types.WriteOption) (bool, error) {
	return orm.Create(ctx, p.Resolver(), p, using, opts...)
}

func (p *Person) Read(ctx context.Context, using string) (bool, error) {
	return orm.Read(ctx, p.Resolver(), p, using)
}

func (p *Person) Update(ctx context.Context, using string, opts ...types.WriteOption) (bool, error) {
	return orm.Update(ctx, p.Resolver(), p, using, opts...)
}

func (p *Person) Delete(ctx context.Context, using string) (bool, error) {
	return orm.Delete(ctx, p.Resolver(), p, using)
}
