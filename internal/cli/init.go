package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/prospyr/internal/paths"
	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// configFile holds the structure written to config.yaml by init.
type configFile struct {
	Connections map[string]types.Config `yaml:"connections"`
}

type initOptions struct {
	name        string
	baseURL     string
	accessToken string
	userEmail   string
	force       bool
}

func newInitCmd(a *app) *cobra.Command {
	var opts initOptions
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write config.yaml with a connection",
		Long: `Create the configuration directory and write config.yaml with one
connection. An existing config.yaml is left alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, a, opts)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", types.DefaultConnection, "connection name")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "API base URL (default: "+types.DefaultBaseURL+")")
	cmd.Flags().StringVar(&opts.accessToken, "access-token", "", "API access token (required)")
	cmd.Flags().StringVar(&opts.userEmail, "user-email", "", "API user email (required)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing config.yaml")
	return cmd
}

func runInit(cmd *cobra.Command, a *app, opts initOptions) error {
	cfg := types.Config{
		BaseURL:     opts.baseURL,
		AccessToken: opts.accessToken,
		UserEmail:   opts.userEmail,
	}
	if err := cfg.WithDefaults().Validate(); err != nil {
		return userError(err)
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := ensureConfigDir(configDir); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	path := filepath.Join(configDir, configFileExt)
	if err := writeConfig(path, opts.name, cfg, opts.force); err != nil {
		if errors.Is(err, os.ErrExist) {
			return userError(fmt.Errorf("%s already exists (use --force to overwrite)", path))
		}
		return sysError(fmt.Errorf("write config: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

// writeConfig writes config.yaml holding a single connection. Unless force
// is set, an existing file is not replaced and os.ErrExist is returned.
func writeConfig(path, name string, cfg types.Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return os.ErrExist
		}
	}

	data, err := yaml.Marshal(&configFile{
		Connections: map[string]types.Config{name: cfg},
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}
