// Package orm implements the create, read, update and delete operations shared
// by every resource type. Each operation resolves a named connection, issues
// exactly one request and interprets the status code; failures come back as
// types.ErrPrecondition, *types.ValidationError or *types.APIError.
package orm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// The API answers creates with 200 OK; 201 is accepted as well.
var createSuccessCodes = map[int]bool{
	http.StatusOK:      true,
	http.StatusCreated: true,
}

var (
	readSuccessCodes   = map[int]bool{http.StatusOK: true}
	updateSuccessCodes = map[int]bool{http.StatusOK: true}
	deleteSuccessCodes = map[int]bool{http.StatusOK: true}
)

// Create creates m remotely and assigns the server's fields to it, including
// its new id. WithEmail sets a work email on the payload, replacing any email
// already present. Returns ErrPrecondition if m already has an id.
func Create(ctx context.Context, conns types.Resolver, m types.Model, using string, opts ...types.WriteOption) (bool, error) {
	if id, ok := m.Identity(); ok {
		return false, fmt.Errorf("%w: %T cannot be created; it already has id %d", types.ErrPrecondition, m, id)
	}
	conn, err := resolve(conns, using)
	if err != nil {
		return false, err
	}

	data, err := m.RawData()
	if err != nil {
		return false, fmt.Errorf("raw data: %w", err)
	}
	o := types.ApplyWriteOptions(opts)
	if o.Email != "" {
		data["email"] = workEmail(o.Email)
	}

	resp, err := conn.Post(ctx, conn.BuildAbsoluteURL(m.Meta().CreatePath), data)
	if err != nil {
		return false, err
	}

	switch {
	case createSuccessCodes[resp.StatusCode]:
		if err := apply(m, resp); err != nil {
			return false, err
		}
		return true, nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return false, validationError(resp)
	default:
		return false, &types.APIError{StatusCode: resp.StatusCode, Body: resp.Text()}
	}
}

// Read refreshes m in place from its detail path.
// Returns ErrPrecondition if m has no id.
func Read(ctx context.Context, conns types.Resolver, m types.Model, using string) (bool, error) {
	id, ok := m.Identity()
	if !ok {
		return false, fmt.Errorf("%w: %T must be saved before it is read", types.ErrPrecondition, m)
	}
	return read(ctx, conns, m, using, m.Meta().ResolveDetailPath(id))
}

// ReadSingleton refreshes m from its detail path used verbatim. Singleton
// resources such as the account have no id.
func ReadSingleton(ctx context.Context, conns types.Resolver, m types.Model, using string) (bool, error) {
	return read(ctx, conns, m, using, m.Meta().DetailPath)
}

func read(ctx context.Context, conns types.Resolver, m types.Model, using, path string) (bool, error) {
	conn, err := resolve(conns, using)
	if err != nil {
		return false, err
	}
	resp, err := conn.Get(ctx, conn.BuildAbsoluteURL(path))
	if err != nil {
		return false, err
	}
	if !readSuccessCodes[resp.StatusCode] {
		return false, &types.APIError{StatusCode: resp.StatusCode, Body: resp.Text()}
	}
	if err := apply(m, resp); err != nil {
		return false, err
	}
	return true, nil
}

// Update pushes m's raw data to its detail path. The id is never sent and
// custom fields are re-encoded into the wire shape. WithEmail replaces the
// address of the existing email object or adds a work email; WithEmails does
// the same for the first entry of the emails list.
//
// The response body is not merged back into m.
func Update(ctx context.Context, conns types.Resolver, m types.Model, using string, opts ...types.WriteOption) (bool, error) {
	id, ok := m.Identity()
	if !ok {
		return false, fmt.Errorf("%w: %T cannot be updated before it is saved", types.ErrPrecondition, m)
	}

	data, err := m.RawData()
	if err != nil {
		return false, fmt.Errorf("raw data: %w", err)
	}
	delete(data, "id")

	fields, err := EncodeCustomFields(data["custom_fields"])
	if err != nil {
		return false, err
	}
	data["custom_fields"] = fields

	o := types.ApplyWriteOptions(opts)
	if o.Email != "" {
		if existing, ok := data["email"].(map[string]any); ok {
			existing["email"] = o.Email
		} else {
			data["email"] = workEmail(o.Email)
		}
	}
	if o.Emails != "" {
		setFirstEmail(data, o.Emails)
	}

	conn, err := resolve(conns, using)
	if err != nil {
		return false, err
	}
	resp, err := conn.Put(ctx, conn.BuildAbsoluteURL(m.Meta().ResolveDetailPath(id)), data)
	if err != nil {
		return false, err
	}

	switch {
	case updateSuccessCodes[resp.StatusCode]:
		return true, nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return false, validationError(resp)
	default:
		return false, &types.APIError{StatusCode: resp.StatusCode, Body: resp.Text()}
	}
}

// Delete removes m remotely. m keeps its id and fields afterwards.
// Returns ErrPrecondition if m has no id.
func Delete(ctx context.Context, conns types.Resolver, m types.Model, using string) (bool, error) {
	id, ok := m.Identity()
	if !ok {
		return false, fmt.Errorf("%w: %T cannot be deleted before it is saved", types.ErrPrecondition, m)
	}
	conn, err := resolve(conns, using)
	if err != nil {
		return false, err
	}
	resp, err := conn.Delete(ctx, conn.BuildAbsoluteURL(m.Meta().ResolveDetailPath(id)))
	if err != nil {
		return false, err
	}
	if !deleteSuccessCodes[resp.StatusCode] {
		return false, &types.APIError{StatusCode: resp.StatusCode, Body: resp.Text()}
	}
	return true, nil
}

func resolve(conns types.Resolver, using string) (types.Connection, error) {
	if using == "" {
		using = types.DefaultConnection
	}
	if conns == nil {
		return nil, fmt.Errorf("%w: %q (no registry)", types.ErrConnectionNotFound, using)
	}
	return conns.Resolve(using)
}

// apply decodes a success body, normalizes it and assigns it to m.
func apply(m types.Model, resp *types.Response) error {
	var body map[string]any
	if err := resp.JSON(&body); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	data, err := m.LoadRaw(body)
	if err != nil {
		return fmt.Errorf("load raw: %w", err)
	}
	if err := m.SetFields(data); err != nil {
		return fmt.Errorf("set fields: %w", err)
	}
	return nil
}

// validationError builds a *ValidationError from a 422 body. Bodies that are
// not the expected JSON object are reported verbatim.
func validationError(resp *types.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := resp.JSON(&body); err != nil || body.Message == "" {
		return &types.ValidationError{Message: resp.Text()}
	}
	return &types.ValidationError{Message: body.Message}
}

func workEmail(email string) map[string]any {
	return map[string]any{"category": "work", "email": email}
}

func setFirstEmail(data map[string]any, email string) {
	if list, ok := data["emails"].([]any); ok && len(list) > 0 {
		if first, ok := list[0].(map[string]any); ok {
			first["email"] = email
			return
		}
	}
	data["emails"] = []any{workEmail(email)}
}
