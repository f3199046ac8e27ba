package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/prospyr/internal/paths"
	"github.com/mesh-intelligence/prospyr/internal/twin"
)

const shutdownTimeout = 5 * time.Second

type twinOptions struct {
	addr     string
	dataDir  string
	seed     string
	snapshot string
}

func newTwinCmd(a *app) *cobra.Command {
	var opts twinOptions
	cmd := &cobra.Command{
		Use:   "twin",
		Short: "Serve a local twin of the CRM API",
		Long: `Serve a local twin of the CRM API backed by SQLite. Point a connection's
base_url at http://<addr>/developer_api/v1/ to use it. Custom field
definitions are seeded from twin.custom_field_definitions in config.yaml.
--seed imports records from a JSONL snapshot and --snapshot writes one on
shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTwin(ctx, cmd, a, opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "127.0.0.1:8088", "listen address")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "twin data directory (default: platform data dir/prospyr/twin)")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "JSONL snapshot to import before serving")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "JSONL file to export records to on shutdown")
	return cmd
}

func runTwin(ctx context.Context, cmd *cobra.Command, a *app, opts twinOptions) error {
	dataDir, err := paths.ResolveTwinDataDir(opts.dataDir, a.config.GetString(cfgKeyTwinDataDir))
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	defs, err := twinDefinitions(a.config)
	if err != nil {
		return userError(err)
	}

	store, err := twin.Open(dataDir, a.config.GetString(cfgKeyTwinAccountName))
	if err != nil {
		return sysError(fmt.Errorf("open twin store: %w", err))
	}
	defer store.Close()
	if err := store.SeedDefinitions(defs); err != nil {
		return sysError(err)
	}
	if opts.seed != "" {
		n, err := store.Import(opts.seed)
		if err != nil {
			return userError(fmt.Errorf("import seed: %w", err))
		}
		a.logger.Info("Imported seed records", zap.String("path", opts.seed), zap.Int("records", n))
	}

	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return sysError(fmt.Errorf("listen: %w", err))
	}

	srv := &http.Server{
		Handler:           twin.NewRouter(twin.NewHandler(store, a.logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Twin serving http://%s%s/ (data: %s)\n", ln.Addr(), twin.APIPrefix, dataDir)
	a.logger.Info("Twin started",
		zap.String("addr", ln.Addr().String()),
		zap.String("data_dir", dataDir),
		zap.Int("definitions", len(defs)))

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return sysError(fmt.Errorf("serve: %w", err))
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return sysError(fmt.Errorf("shutdown: %w", err))
	}
	if opts.snapshot != "" {
		if err := store.Export(opts.snapshot); err != nil {
			return sysError(fmt.Errorf("export snapshot: %w", err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote snapshot %s\n", opts.snapshot)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Twin stopped")
	return nil
}
