package resources

import (
	"context"

	"github.com/mesh-intelligence/prospyr/pkg/orm"
	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// Lead is a prospective customer. Unlike a Person it has a single email.
type Lead struct {
	Record
	CustomFieldMixin

	Name             string        `json:"name"`
	Prefix           string        `json:"prefix,omitempty"`
	FirstName        string        `json:"first_name,omitempty"`
	LastName         string        `json:"last_name,omitempty"`
	Title            string        `json:"title,omitempty"`
	CompanyName      string        `json:"company_name,omitempty"`
	AssigneeID       *int64        `json:"assignee_id,omitempty"`
	CustomerSourceID *int64        `json:"customer_source_id,omitempty"`
	Status           string        `json:"status,omitempty"`
	MonetaryValue    *float64      `json:"monetary_value,omitempty"`
	Details          string        `json:"details,omitempty"`
	Address          *Address      `json:"address,omitempty"`
	Email            *Email        `json:"email,omitempty"`
	PhoneNumbers     []PhoneNumber `json:"phone_numbers,omitempty"`
	Socials          []Social      `json:"socials,omitempty"`
	Websites         []Website     `json:"websites,omitempty"`
	Tags             []string      `json:"tags,omitempty"`
	DateCreated      int64         `json:"date_created,omitempty"`
	DateModified     int64         `json:"date_modified,omitempty"`
}

var leadMeta = types.Meta{
	CreatePath: "leads/",
	DetailPath: "leads/{id}/",
}

var _ types.ReadWritable = (*Lead)(nil)

func (l *Lead) Meta() types.Meta { return leadMeta }

func (l *Lead) RawData() (map[string]any, error) { return rawData(l) }

func (l *Lead) SetFields(data map[string]any) error { return decode(data, l) }

func (l *Lead) Create(ctx context.Context, using string, opts ...types.WriteOption) (bool, error) {
	return orm.Create(ctx, l.Resolver(), l, using, opts...)
}

func (l *Lead) Read(ctx context.Context, using string) (bool, error) {
	return orm.Read(ctx, l.Resolver(), l, using)
}

func (l *Lead) Update(ctx context.Context, using string, opts ...types.WriteOption) (bool, error) {
	return orm.Update(ctx, l.Resolver(), l, using, opts...)
}

func (l *Lead) Delete(ctx context.Context, using string) (bool, error) {
	return orm.Delete(ctx, l.Resolver(), l, using)
}
