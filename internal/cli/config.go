// Config loading for the prospyr CLI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/prospyr/pkg/connection"
	"github.com/mesh-intelligence/prospyr/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyConnections     = "connections"
	cfgKeyTwinDataDir     = "twin.data_dir"
	cfgKeyTwinAccountName = "twin.account_name"
	cfgKeyTwinDefinitions = "twin.custom_field_definitions"

	// Environment-only keys that override the default connection.
	cfgKeyEnvBaseURL     = "base_url"
	cfgKeyEnvAccessToken = "access_token"
	cfgKeyEnvUserEmail   = "user_email"

	envPrefix = "PROSPYR"

	defaultTwinAccountName = "Twin Account"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# prospyr CLI configuration

# Named API connections. Commands use "default" unless --using names another.
# PROSPYR_ACCESS_TOKEN, PROSPYR_USER_EMAIL and PROSPYR_BASE_URL override the
# default connection.
connections:
  default:
    # base_url: https://api.prosperworks.com/developer_api/v1/
    access_token: ""
    user_email: ""
    # timeout: 30s

# Local twin server (prospyr twin).
# twin:
#   data_dir:
#   account_name: Twin Account
#   custom_field_definitions:
#     - id: 1
#       name: Size
#       data_type: Dropdown
#       options:
#         - {id: 10, name: Small}
#         - {id: 11, name: Large}
`

// loadConfig reads config.yaml from the resolved config directory using Viper.
// It creates the config directory and a default config.yaml on first run.
// A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyTwinAccountName, defaultTwinAccountName)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeyEnvBaseURL, cfgKeyEnvAccessToken, cfgKeyEnvUserEmail} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// connectionConfigs returns the configured connections by name, with the
// environment overrides applied to the default connection.
func connectionConfigs(v *viper.Viper) (map[string]types.Config, error) {
	conns := map[string]types.Config{}
	if err := v.UnmarshalKey(cfgKeyConnections, &conns); err != nil {
		return nil, fmt.Errorf("decode %s: %w", cfgKeyConnections, err)
	}

	def, hasDefault := conns[types.DefaultConnection]
	if s := v.GetString(cfgKeyEnvBaseURL); s != "" {
		def.BaseURL, hasDefault = s, true
	}
	if s := v.GetString(cfgKeyEnvAccessToken); s != "" {
		def.AccessToken, hasDefault = s, true
	}
	if s := v.GetString(cfgKeyEnvUserEmail); s != "" {
		def.UserEmail, hasDefault = s, true
	}
	if hasDefault {
		conns[types.DefaultConnection] = def
	}
	return conns, nil
}

// buildRegistry creates an HTTP connection per configured name. Every
// connection is validated; the first invalid one fails the build.
func buildRegistry(v *viper.Viper, logger *zap.Logger) (*connection.Registry, error) {
	conns, err := connectionConfigs(v)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(conns))
	for name := range conns {
		names = append(names, name)
	}
	sort.Strings(names)

	reg := connection.NewRegistry()
	for _, name := range names {
		conn, err := connection.NewHTTP(conns[name], logger)
		if err != nil {
			return nil, fmt.Errorf("connection %q: %w", name, err)
		}
		reg.Register(name, conn)
	}
	return reg, nil
}

// twinDefinitions returns the custom field definitions the twin is seeded with.
func twinDefinitions(v *viper.Viper) (types.Definitions, error) {
	var defs types.Definitions
	err := v.UnmarshalKey(cfgKeyTwinDefinitions, &defs, func(c *mapstructure.DecoderConfig) {
		c.TagName = "json"
	})
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", cfgKeyTwinDefinitions, err)
	}
	return defs, nil
}
