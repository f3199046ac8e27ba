package resources

import (
	"context"

	"github.com/mesh-intelligence/prospyr/pkg/orm"
	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// Opportunity is a potential deal moving through a pipeline.
type Opportunity struct {
	Record
	CustomFieldMixin

	Name             string   `json:"name"`
	AssigneeID       *int64   `json:"assignee_id,omitempty"`
	CloseDate        string   `json:"close_date,omitempty"`
	CompanyID        *int64   `json:"company_id,omitempty"`
	CompanyName      string   `json:"company_name,omitempty"`
	CustomerSourceID *int64   `json:"customer_source_id,omitempty"`
	Details          string   `json:"details,omitempty"`
	LossReasonID     *int64   `json:"loss_reason_id,omitempty"`
	MonetaryValue    *float64 `json:"monetary_value,omitempty"`
	PipelineID       *int64   `json:"pipeline_id,omitempty"`
	PipelineStageID  *int64   `json:"pipeline_stage_id,omitempty"`
	PrimaryContactID *int64   `json:"primary_contact_id,omitempty"`
	Priority         string   `json:"priority,omitempty"`
	Status           string   `json:"status,omitempty"`
	WinProbability   *int64   `json:"win_probability,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	DateCreated      int64    `json:"date_created,omitempty"`
	DateModified     int64    `json:"date_modified,omitempty"`
}

var opportunityMeta = types.Meta{
	CreatePath: "opportunities/",
	DetailPath: "opportunities/{id}/",
}

var _ types.ReadWritable = (*Opportunity)(nil)

func (o *Opportunity) Meta() types.Meta { return opportunityMeta }

func (o *Opportunity) RawData() (map[string]any, error) { return rawData(o) }

func (o *Opportunity) SetFields(data map[string]any) error { return decode(data, o) }

func (o *Opportunity) Create(ctx context.Context, using string, opts ...types.WriteOption) (bool, error) {
	return orm.Create(ctx, o.Resolver(), o, using, opts...)
}

func (o *Opportunity) Read(ctx context.Context, using string) (bool, error) {
	return orm.Read(ctx, o.Resolver(), o, using)
}

func (o *Opportunity) Update(ctx context.Context, using string, opts ...types.WriteOption) (bool, error) {
	return orm.Update(ctx, o.Resolver(), o, using, opts...)
}

func (o *Opportunity) Delete(ctx context.Context, using string) (bool, error) {
	return orm.Delete(ctx, o.Resolver(), o, using)
}
