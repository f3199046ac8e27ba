package resources

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/prospyr/internal/twin"
	"github.com/mesh-intelligence/prospyr/pkg/connection"
	"github.com/mesh-intelligence/prospyr/pkg/orm"
	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// startTwin serves a fresh twin and returns a registry whose default
// connection points at it, plus the twin's custom field definitions.
func startTwin(t *testing.T) (*connection.Registry, types.Definitions) {
	t.Helper()

	store, err := twin.Open(t.TempDir(), "Twin Account")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.SeedDefinitions(sizeDefs))

	srv := httptest.NewServer(twin.NewRouter(twin.NewHandler(store, nil)))
	t.Cleanup(srv.Close)

	conn, err := connection.NewHTTP(types.Config{
		BaseURL:     srv.URL + twin.APIPrefix + "/",
		AccessToken: "token",
		UserEmail:   "me@example.com",
	}, nil)
	require.NoError(t, err)

	reg := connection.NewRegistry()
	reg.Register(types.DefaultConnection, conn)

	defs, err := orm.FetchDefinitions(context.Background(), reg, "")
	require.NoError(t, err)
	return reg, defs
}

func TestPersonRoundTrip(t *testing.T) {
	reg, defs := startTwin(t)
	require.Len(t, defs, 2)
	ctx := context.Background()

	p := &Person{Name: "Ada Lovelace"}
	p.UseRegistry(reg)
	p.UseDefinitions(defs)
	p.CustomFields = types.CustomFields{{ID: 10}, {ID: 11}}

	ok, err := p.Create(ctx, "", types.WithEmail("ada@x.io"))
	require.NoError(t, err)
	require.True(t, ok)
	id, saved := p.Identity()
	require.True(t, saved)
	assert.Equal(t, "Size", p.CustomFields[0].Name, "create response is enriched")

	_, err = p.Create(ctx, "")
	assert.ErrorIs(t, err, types.ErrPrecondition)

	p.SetCustomFieldValue("Size", "large")
	p.SetCustomFieldValue("Colors", []string{"Red", "Blue"})
	p.Title = "Countess"
	ok, err = p.Update(ctx, "", types.WithEmails("ada@lovelace.io"))
	require.NoError(t, err)
	require.True(t, ok)

	fresh := &Person{}
	fresh.UseRegistry(reg)
	fresh.UseDefinitions(defs)
	fresh.SetID(id)
	ok, err = fresh.Read(ctx, "")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "Ada Lovelace", fresh.Name)
	assert.Equal(t, "Countess", fresh.Title)
	assert.Equal(t, "Large", fresh.GetCustomFieldValue("Size"))
	assert.Equal(t, "Red,Blue", fresh.GetCustomFieldValue("Colors"))
	require.Len(t, fresh.Emails, 1)
	assert.Equal(t, Email{Email: "ada@lovelace.io", Category: "work"}, fresh.Emails[0])

	ok, err = fresh.Delete(ctx, "")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = fresh.Read(ctx, "")
	assert.Equal(t, 404, types.StatusCode(err))
}

func TestValidationErrorFromTwin(t *testing.T) {
	reg, _ := startTwin(t)
	ctx := context.Background()

	c := &Company{}
	c.UseRegistry(reg)
	_, err := c.Create(ctx, "")
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
	assert.Equal(t, "Name can't be blank", err.Error())

	l := &Lead{Name: "Prospect"}
	l.UseRegistry(reg)
	_, err = l.Create(ctx, "", types.WithEmail("not-an-email"))
	require.Error(t, err)
	assert.Equal(t, "Email is invalid", err.Error())
}

func TestNamedConnections(t *testing.T) {
	reg, _ := startTwin(t)
	ctx := context.Background()

	o := &Opportunity{Name: "Deal"}
	o.UseRegistry(reg)
	_, err := o.Create(ctx, "eu")
	assert.ErrorIs(t, err, types.ErrConnectionNotFound)

	conn, err := reg.Resolve("")
	require.NoError(t, err)
	reg.Register("eu", conn)
	ok, err := o.Create(ctx, "eu")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAccountRead(t *testing.T) {
	reg, _ := startTwin(t)

	a := &Account{}
	a.UseRegistry(reg)
	ok, err := a.Read(context.Background(), "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Twin Account", a.Name)
	id, _ := a.Identity()
	assert.Equal(t, int64(1), id)
}
