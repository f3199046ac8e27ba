package types

import (
	"context"
	"strconv"
	"strings"
)

// DefaultConnection is the connection name used when a caller passes an
// empty using argument.
const DefaultConnection = "default"

// Meta describes where a resource type lives on the remote API.
// DetailPath contains an {id} placeholder unless the resource is a singleton.
type Meta struct {
	CreatePath string
	DetailPath string
}

// ResolveDetailPath substitutes id into the DetailPath template.
func (m Meta) ResolveDetailPath(id int64) string {
	return strings.ReplaceAll(m.DetailPath, "{id}", strconv.FormatInt(id, 10))
}

// Model is a local record backed by the remote API. RawData, LoadRaw and
// SetFields mirror the three transforms between the wire shape and the
// model's typed fields.
type Model interface {
	// Meta returns the resource type's path descriptor.
	Meta() Meta

	// Identity returns the remote id and whether it is set. A model without
	// an id has never been created remotely.
	Identity() (int64, bool)

	// RawData returns the model's fields in the shape the API expects.
	// The returned map is a fresh copy; callers may modify it.
	RawData() (map[string]any, error)

	// LoadRaw normalizes a decoded response body into the local shape.
	LoadRaw(data map[string]any) (map[string]any, error)

	// SetFields applies normalized data to the model in place.
	SetFields(data map[string]any) error
}

// WriteOptions carries the optional email arguments of create and update.
type WriteOptions struct {
	Email  string
	Emails string
}

// WriteOption configures a create or update call.
type WriteOption func(*WriteOptions)

// WithEmail sets the structured email field on the outbound payload.
func WithEmail(email string) WriteOption {
	return func(o *WriteOptions) { o.Email = email }
}

// WithEmails sets the first entry of the emails list on the outbound
// payload. Only update honors it.
func WithEmails(email string) WriteOption {
	return func(o *WriteOptions) { o.Emails = email }
}

// ApplyWriteOptions folds opts into a WriteOptions value.
func ApplyWriteOptions(opts []WriteOption) WriteOptions {
	var o WriteOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Creatable resources can be created remotely. Create returns true on success
// and assigns the server's fields, including the id, to the receiver.
type Creatable interface {
	Create(ctx context.Context, using string, opts ...WriteOption) (bool, error)
}

// Readable resources can be refreshed in place from the remote API.
type Readable interface {
	Read(ctx context.Context, using string) (bool, error)
}

// Updateable resources can push their local fields to the remote API.
type Updateable interface {
	Update(ctx context.Context, using string, opts ...WriteOption) (bool, error)
}

// Deletable resources can be removed from the remote API.
type Deletable interface {
	Delete(ctx context.Context, using string) (bool, error)
}

// ReadWritable bundles the full lifecycle.
type ReadWritable interface {
	Creatable
	Readable
	Updateable
	Deletable
}
