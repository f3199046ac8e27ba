package types

import (
	"context"
	"encoding/json"
)

// Connection is the transport a Model talks through. Implementations own
// authentication, timeouts and any retry policy; the orm layer issues exactly
// one call per operation.
type Connection interface {
	Get(ctx context.Context, url string) (*Response, error)
	Post(ctx context.Context, url string, body any) (*Response, error)
	Put(ctx context.Context, url string, body any) (*Response, error)
	Delete(ctx context.Context, url string) (*Response, error)

	// BuildAbsoluteURL joins path onto the connection's base URL.
	BuildAbsoluteURL(path string) string
}

// Resolver looks up a Connection by name.
// Returns ErrConnectionNotFound if no connection is registered under using.
type Resolver interface {
	Resolve(using string) (Connection, error)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Text returns the raw body.
func (r *Response) Text() string {
	return string(r.Body)
}
