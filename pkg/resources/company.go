package resources

import (
	"context"

	"github.com/mesh-intelligence/prospyr/pkg/orm"
	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// Company is an organization contacts belong to.
type Company struct {
	Record
	CustomFieldMixin

	Name          string        `json:"name"`
	AssigneeID    *int64        `json:"assignee_id,omitempty"`
	ContactTypeID *int64        `json:"contact_type_id,omitempty"`
	Details       string        `json:"details,omitempty"`
	EmailDomain   string        `json:"email_domain,omitempty"`
	Address       *Address      `json:"address,omitempty"`
	PhoneNumbers  []PhoneNumber `json:"phone_numbers,omitempty"`
	Socials       []Social      `json:"socials,omitempty"`
	Websites      []Website     `json:"websites,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
	DateCreated   int64         `json:"date_created,omitempty"`
	DateModified  int64         `json:"date_modified,omitempty"`
}

var companyMeta = types.Meta{
	CreatePath: "companies/",
	DetailPath: "companies/{id}/",
}

var _ types.ReadWritable = (*Company)(nil)

func (c *Company) Meta() types.Meta { return companyMeta }

func (c *Company) RawData() (map[string]any, error) { return rawData(c) }

func (c *Company) SetFields(data map[string]any) error { return decode(data, c) }

func (c *Company) Create(ctx context.Context, using string, opts ...types.WriteOption) (bool, error) {
	return orm.Create(ctx, c.Resolver(), c, using, opts...)
}

func (c *Company) Read(ctx context.Context, using string) (bool, error) {
	return orm.Read(ctx, c.Resolver(), c, using)
}

func (c *Company) Update(ctx context.Context, using string, opts ...types.WriteOption) (bool, error) {
	return orm.Update(ctx, c.Resolver(), c, using, opts...)
}

func (c *Company) Delete(ctx context.Context, using string) (bool, error) {
	return orm.Delete(ctx, c.Resolver(), c, using)
}
