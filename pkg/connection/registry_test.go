package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/prospyr/pkg/types"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("")
	assert.ErrorIs(t, err, types.ErrConnectionNotFound)

	primary, err := NewHTTP(testConfig("https://a.example.com/"), nil)
	require.NoError(t, err)
	secondary, err := NewHTTP(testConfig("https://b.example.com/"), nil)
	require.NoError(t, err)

	r.Register("", primary)
	r.Register("eu", secondary)

	got, err := r.Resolve("")
	require.NoError(t, err)
	assert.Same(t, primary, got, "empty name resolves the default connection")

	got, err = r.Resolve("eu")
	require.NoError(t, err)
	assert.Same(t, secondary, got)

	assert.Equal(t, []string{"default", "eu"}, r.Names())

	r.Remove("eu")
	r.Remove("eu")
	_, err = r.Resolve("eu")
	assert.ErrorIs(t, err, types.ErrConnectionNotFound)
}

func TestDefaultRegistryIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}
