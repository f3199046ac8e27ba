package resources

import (
	"context"

	"github.com/mesh-intelligence/prospyr/pkg/orm"
	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// Account is the API user's account. It is a singleton addressed without an id.
type Account struct {
	Record

	Name string `json:"name"`
}

var accountMeta = types.Meta{
	DetailPath: "account/",
}

var _ types.Readable = (*Account)(nil)

func (a *Account) Meta() types.Meta { return accountMeta }

func (a *Account) RawData() (map[string]any, error) { return rawData(a) }

func (a *Account) SetFields(data map[string]any) error { return decode(data, a) }

// Read refreshes the account. No id is required.
func (a *Account) Read(ctx context.Context, using string) (bool, error) {
	return orm.ReadSingleton(ctx, a.Resolver(), a, using)
}
