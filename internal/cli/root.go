// Package cli implements the prospyr command-line interface: CRUD commands
// over the CRM resources, custom field access and a local twin server.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/prospyr/internal/paths"
	"github.com/mesh-intelligence/prospyr/pkg/connection"
	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	using     string
	jsonMode  bool
	verbose   bool
}

// app is the state shared by one command tree.
type app struct {
	flags rootFlags

	config *viper.Viper
	logger *zap.Logger

	registry    *connection.Registry
	definitions types.Definitions
}

// NewRootCmd creates the top-level "prospyr" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "prospyr",
		Short: "Create, read, update and delete ProsperWorks CRM records",
		Long: `prospyr talks to the ProsperWorks (Copper) developer API. Records are
addressed by type (people, companies, leads, opportunities) and id.
Connections are configured in config.yaml under the config directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// init writes its own config; version needs none.
			if cmd.Name() == "version" || cmd.Name() == "init" {
				return nil
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir/prospyr)")
	root.PersistentFlags().StringVar(&a.flags.using, "using", "", "named connection to use (default: default)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newCreateCmd(a))
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newUpdateCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newAccountCmd(a))
	root.AddCommand(newFieldCmd(a))
	root.AddCommand(newTwinCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "prospyr:", err)
		os.Exit(exitCode(err))
	}
}

// setup loads config.yaml and builds the logger.
func (a *app) setup() error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	a.config = cfg

	logger, err := newLogger(a.flags.verbose)
	if err != nil {
		return sysError(fmt.Errorf("create logger: %w", err))
	}
	a.logger = logger
	return nil
}

// connections returns the registry built from the configured connections.
// It is built on first use so that commands which make no API calls do not
// require credentials.
func (a *app) connections() (*connection.Registry, error) {
	if a.registry != nil {
		return a.registry, nil
	}
	reg, err := buildRegistry(a.config, a.logger)
	if err != nil {
		return nil, err
	}
	a.registry = reg
	return reg, nil
}

// newLogger returns a development logger when verbose, otherwise a
// production logger that only reports warnings and errors.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Sampling = nil
	return cfg.Build()
}

// exitError carries the process exit code for err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// exitCode maps err to an exit code. Errors the user can fix by changing the
// command line, the config or the record are user errors; everything else is
// a system error.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch {
	case types.IsValidation(err),
		errors.Is(err, types.ErrPrecondition),
		errors.Is(err, types.ErrUnknownResource),
		errors.Is(err, types.ErrInvalidCustomFieldValue),
		errors.Is(err, types.ErrConnectionNotFound),
		errors.Is(err, types.ErrConfigInvalid):
		return exitUserError
	}
	if code := types.StatusCode(err); code >= 400 && code < 500 {
		return exitUserError
	}
	return exitSysError
}
