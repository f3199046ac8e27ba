package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/prospyr/internal/twin"
	"github.com/mesh-intelligence/prospyr/pkg/types"
)

var testDefinitions = types.Definitions{
	{ID: 10, Name: "Size", DataType: types.TypeDropdown, Options: []types.Option{{ID: 5, Name: "Large"}, {ID: 6, Name: "Small"}}},
	{ID: 11, Name: "Colors", DataType: types.TypeMultiSelect, Options: []types.Option{{ID: 1, Name: "Red"}, {ID: 2, Name: "Blue"}}},
	{ID: 12, Name: "Budget", DataType: types.TypeCurrency},
}

// clearEnv keeps the caller's PROSPYR_* variables out of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PROSPYR_CONFIG_DIR", "PROSPYR_DATA_DIR", "PROSPYR_BASE_URL", "PROSPYR_ACCESS_TOKEN", "PROSPYR_USER_EMAIL"} {
		t.Setenv(key, "")
	}
}

// setupTwin serves a twin and returns a config directory whose default
// connection points at it.
func setupTwin(t *testing.T) string {
	t.Helper()
	clearEnv(t)

	store, err := twin.Open(t.TempDir(), "CLI Account")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.SeedDefinitions(testDefinitions))

	srv := httptest.NewServer(twin.NewRouter(twin.NewHandler(store, nil)))
	t.Cleanup(srv.Close)

	configDir := t.TempDir()
	require.NoError(t, writeConfig(filepath.Join(configDir, configFileExt), types.DefaultConnection, types.Config{
		BaseURL:     srv.URL + twin.APIPrefix + "/",
		AccessToken: "token",
		UserEmail:   "me@example.com",
	}, false))
	return configDir
}

func run(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config-dir", configDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func runJSON(t *testing.T, configDir string, args ...string) map[string]any {
	t.Helper()
	out, err := run(t, configDir, append(args, "--json")...)
	require.NoError(t, err, out)
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "prospyr v"+Version)
}

func TestInit(t *testing.T) {
	clearEnv(t)
	configDir := filepath.Join(t.TempDir(), "cfg")

	_, err := run(t, configDir, "init", "--user-email", "me@example.com")
	assert.Equal(t, exitUserError, exitCode(err), "access token is required")

	out, err := run(t, configDir, "init", "--access-token", "tok", "--user-email", "me@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, configFileExt)

	_, err = run(t, configDir, "init", "--access-token", "tok2", "--user-email", "me@example.com")
	assert.Equal(t, exitUserError, exitCode(err), "existing config is kept without --force")

	_, err = run(t, configDir, "init", "--name", "eu", "--access-token", "tok3", "--user-email", "me@example.com", "--force")
	require.NoError(t, err)

	v, err := loadConfig(configDir)
	require.NoError(t, err)
	conns, err := connectionConfigs(v)
	require.NoError(t, err)
	require.Contains(t, conns, "eu")
	assert.Equal(t, "tok3", conns["eu"].AccessToken)
	assert.NotContains(t, conns, types.DefaultConnection)
}

func TestLoadConfigWritesDefault(t *testing.T) {
	clearEnv(t)
	configDir := filepath.Join(t.TempDir(), "fresh")

	v, err := loadConfig(configDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(configDir, configFileExt))
	assert.Equal(t, defaultTwinAccountName, v.GetString(cfgKeyTwinAccountName))

	_, err = buildRegistry(v, nil)
	assert.ErrorIs(t, err, types.ErrConfigInvalid, "the default file has no credentials")
}

func TestConnectionConfigsEnvOverride(t *testing.T) {
	clearEnv(t)
	configDir := t.TempDir()
	yaml := `connections:
  default:
    access_token: from-file
    user_email: file@example.com
    timeout: 5s
  eu:
    base_url: https://eu.example.com/developer_api/v1/
    access_token: eu-token
    user_email: eu@example.com
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, configFileExt), []byte(yaml), 0o644))
	t.Setenv("PROSPYR_ACCESS_TOKEN", "from-env")

	v, err := loadConfig(configDir)
	require.NoError(t, err)
	conns, err := connectionConfigs(v)
	require.NoError(t, err)

	assert.Equal(t, "from-env", conns["default"].AccessToken)
	assert.Equal(t, "file@example.com", conns["default"].UserEmail)
	assert.Equal(t, "5s", conns["default"].Timeout.String())
	assert.Equal(t, "eu-token", conns["eu"].AccessToken)

	reg, err := buildRegistry(v, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "eu"}, reg.Names())
}

func TestTwinDefinitionsFromConfig(t *testing.T) {
	clearEnv(t)
	configDir := t.TempDir()
	yaml := `twin:
  custom_field_definitions:
    - id: 10
      name: Size
      data_type: Dropdown
      options:
        - {id: 5, name: Large}
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, configFileExt), []byte(yaml), 0o644))

	v, err := loadConfig(configDir)
	require.NoError(t, err)
	defs, err := twinDefinitions(v)
	require.NoError(t, err)
	assert.Equal(t, types.Definitions{
		{ID: 10, Name: "Size", DataType: types.TypeDropdown, Options: []types.Option{{ID: 5, Name: "Large"}}},
	}, defs)
}

func TestRecordCommands(t *testing.T) {
	configDir := setupTwin(t)

	created := runJSON(t, configDir, "create", "person", "--name", "Ada Lovelace",
		"--email", "ada@example.com", "--field", "Size=large", "--field", "Budget=1500")
	id := fmt.Sprint(int64(created["id"].(float64)))
	assert.Equal(t, "Ada Lovelace", created["name"])

	out, err := run(t, configDir, "get", "people", id)
	require.NoError(t, err)
	assert.Contains(t, out, "people "+id+": Ada Lovelace")
	assert.Contains(t, out, "Size: Large")
	assert.Contains(t, out, "Budget: 1500")

	out, err = run(t, configDir, "update", "people", id, "--name", "Ada King", "--email", "ada@king.io", "--field", "Colors=Red, Blue")
	require.NoError(t, err)
	assert.Equal(t, "Updated people "+id+"\n", out)

	got := runJSON(t, configDir, "get", "person", id)
	assert.Equal(t, "Ada King", got["name"])
	assert.Equal(t, []any{map[string]any{"email": "ada@king.io", "category": "work"}}, got["emails"])

	out, err = run(t, configDir, "field", "get", "people", id, "Colors")
	require.NoError(t, err)
	assert.Equal(t, "Red,Blue\n", out)

	_, err = run(t, configDir, "field", "set", "people", id, "Size", "small")
	require.NoError(t, err)
	out, err = run(t, configDir, "field", "get", "people", id, "Size")
	require.NoError(t, err)
	assert.Equal(t, "Small\n", out)

	out, err = run(t, configDir, "delete", "people", id)
	require.NoError(t, err)
	assert.Equal(t, "Deleted people/"+id+"\n", out)

	_, err = run(t, configDir, "get", "people", id)
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err), "404 is a user error")
}

func TestLeadEmail(t *testing.T) {
	configDir := setupTwin(t)

	created := runJSON(t, configDir, "create", "lead", "--name", "Prospect", "--email", "p@example.com")
	id := fmt.Sprint(int64(created["id"].(float64)))
	assert.Equal(t, map[string]any{"email": "p@example.com", "category": "work"}, created["email"])

	_, err := run(t, configDir, "update", "leads", id, "--email", "new@example.com")
	require.NoError(t, err)
	got := runJSON(t, configDir, "get", "leads", id)
	assert.Equal(t, "new@example.com", got["email"].(map[string]any)["email"])

	_, err = run(t, configDir, "update", "leads", id, "--email", "broken")
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestAccountAndFieldList(t *testing.T) {
	configDir := setupTwin(t)

	out, err := run(t, configDir, "account")
	require.NoError(t, err)
	assert.Equal(t, "Account 1: CLI Account\n", out)

	out, err = run(t, configDir, "field", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "Size")
	assert.Contains(t, lines[1], "Dropdown")
}

func TestCommandErrors(t *testing.T) {
	configDir := setupTwin(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"unknown type", []string{"get", "widgets", "1"}, exitUserError},
		{"bad id", []string{"get", "people", "abc"}, exitUserError},
		{"unknown field", []string{"create", "person", "--name", "x", "--field", "Nope=1"}, exitUserError},
		{"malformed field flag", []string{"create", "person", "--name", "x", "--field", "Size"}, exitUserError},
		{"bad number", []string{"create", "person", "--name", "x", "--field", "Budget=lots"}, exitUserError},
		{"update with nothing", []string{"update", "people", "1"}, exitUserError},
		{"unknown connection", []string{"--using", "eu", "account"}, exitUserError},
		{"missing record", []string{"delete", "companies", "999"}, exitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, configDir, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, exitCode(err))
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"explicit", sysError(errors.New("disk")), exitSysError},
		{"validation", fmt.Errorf("create: %w", &types.ValidationError{Message: "bad"}), exitUserError},
		{"precondition", types.ErrPrecondition, exitUserError},
		{"client status", &types.APIError{StatusCode: 404}, exitUserError},
		{"server status", &types.APIError{StatusCode: 503}, exitSysError},
		{"transport", errors.New("connection refused"), exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestFieldValue(t *testing.T) {
	tests := []struct {
		name    string
		def     types.CustomFieldDefinition
		raw     string
		want    any
		wantErr bool
	}{
		{"empty clears", testDefinitions[0], " ", nil, false},
		{"dropdown passes name", testDefinitions[0], "Large", "Large", false},
		{"multiselect splits", testDefinitions[1], "Red, Blue", []string{"Red", "Blue"}, false},
		{"currency parses", testDefinitions[2], "12.5", 12.5, false},
		{"currency rejects words", testDefinitions[2], "many", nil, true},
		{"date rejects other layouts", types.CustomFieldDefinition{Name: "Due", DataType: types.TypeDate}, "03/04/2024", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fieldValue(tt.def, tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidCustomFieldValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := fieldValue(types.CustomFieldDefinition{Name: "Due", DataType: types.TypeDate}, "2024-03-04")
	require.NoError(t, err)
	assert.IsType(t, int64(0), got)
}

func TestTwinCommandStopsOnCancel(t *testing.T) {
	clearEnv(t)
	configDir := t.TempDir()
	dataDir := filepath.Join(t.TempDir(), "twin-data")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	seed := filepath.Join(t.TempDir(), "seed.jsonl")
	require.NoError(t, os.WriteFile(seed, []byte(`{"collection":"people","id":3,"record":{"name":"Ada"}}`+"\n"), 0o644))
	snapshot := filepath.Join(t.TempDir(), "out.jsonl")

	root.SetArgs([]string{"--config-dir", configDir, "twin", "--addr", "127.0.0.1:0", "--data-dir", dataDir,
		"--seed", seed, "--snapshot", snapshot})
	require.NoError(t, root.ExecuteContext(ctx))

	assert.Contains(t, out.String(), "Twin serving http://127.0.0.1:")
	assert.Contains(t, out.String(), "Twin stopped")
	assert.FileExists(t, filepath.Join(dataDir, twin.DatabaseFile))

	data, err := os.ReadFile(snapshot)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"Ada"`)
}
