package orm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// DefinitionsPath lists the account's custom field definitions.
const DefinitionsPath = "custom_field_definitions/"

// FetchDefinitions reads every custom field definition configured on the
// account. The endpoint returns the full set in one response.
func FetchDefinitions(ctx context.Context, conns types.Resolver, using string) (types.Definitions, error) {
	conn, err := resolve(conns, using)
	if err != nil {
		return nil, err
	}
	resp, err := conn.Get(ctx, conn.BuildAbsoluteURL(DefinitionsPath))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &types.APIError{StatusCode: resp.StatusCode, Body: resp.Text()}
	}
	var defs types.Definitions
	if err := resp.JSON(&defs); err != nil {
		return nil, fmt.Errorf("decode definitions: %w", err)
	}
	return defs, nil
}
