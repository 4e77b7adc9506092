package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/affectgrid/internal/config"
	"github.com/roach88/affectgrid/internal/metrics"
	"github.com/roach88/affectgrid/internal/pipeline"
	"github.com/roach88/affectgrid/internal/semlog"
	"github.com/roach88/affectgrid/internal/server"
	"github.com/roach88/affectgrid/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions

	// TokenGenerator overrides session token generation (for testing).
	// If nil, the server issues UUIDv7 tokens.
	TokenGenerator server.TokenGenerator

	// Ready is called once the grid is listening (for testing).
	Ready func(srv *server.Server)
}

// serveFlagKeys maps config keys to the serve flags that override them.
var serveFlagKeys = map[string]string{
	"server.host":         "host",
	"server.port":         "port",
	"store.path":          "db",
	"semlog.enabled":      "semlog",
	"semlog.path":         "semlog-path",
	"semlog.format":       "semlog-format",
	"ingest.range_policy": "range-policy",
	"ingest.rate_limit":   "rate-limit",
	"metrics.addr":        "metrics-addr",
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return newServeCommand(&ServeOptions{RootOptions: rootOpts})
}

func newServeCommand(opts *ServeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the affect grid",
		Long: `Serve the grid surface on GET / and accept clicks on
POST /save_coordinates.

Every click is stored in the SQLite database (created if missing),
classified by its x value and, unless --semlog=false, appended to the
semantic log as three RDF triples.

Example:
  affectgrid serve
  affectgrid serve --port 9000 --db ./grid.db --semlog-path ./grid.ttl
  affectgrid serve --semlog=false --range-policy reject --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	d := config.Default()
	f := cmd.Flags()
	f.String("host", d.Server.Host, "interface to listen on")
	f.Int("port", d.Server.Port, "TCP port (0 picks a free port)")
	f.String("db", d.Store.Path, "path to SQLite database")
	f.Bool("semlog", d.Semlog.Enabled, "append RDF facts for every click")
	f.String("semlog-path", d.Semlog.Path, "semantic log file")
	f.String("semlog-format", d.Semlog.Format, "semantic log encoding (turtle|ntriples)")
	f.String("range-policy", d.Ingest.RangePolicy, "out-of-range clicks (accept|reject|clamp)")
	f.Float64("rate-limit", d.Ingest.RateLimit, "accepted submissions per second, 0 for unlimited")
	f.String("metrics-addr", d.Metrics.Addr, "Prometheus listener address, empty to disable")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	cfg, file, err := loadConfig(opts.RootOptions, cmd.Flags(), serveFlagKeys)
	if err != nil {
		return err
	}
	if file != "" {
		logger.Info("config loaded", "file", file)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}

	logger.Info("opening database", "path", cfg.Store.Path)
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	if err := logExistingCoordinates(parentCtx, st, logger); err != nil {
		return WrapExitError(ExitCommandError, "failed to read existing coordinates", err)
	}

	recorder := metrics.New(metrics.WithRuntimeCollectors())
	pipeOpts := []pipeline.Option{
		pipeline.WithRangePolicy(cfg.RangePolicy()),
		pipeline.WithRecorder(recorder),
		pipeline.WithLogger(logger),
	}
	if cfg.Semlog.Enabled {
		factLog, err := semlog.Open(cfg.Semlog.Path,
			semlog.WithFormat(cfg.SemlogFormat()),
			semlog.WithLogger(logger),
		)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open semantic log", err)
		}
		defer func() {
			if closeErr := factLog.Close(); closeErr != nil {
				logger.Error("error closing semantic log", "error", closeErr)
			}
		}()
		logger.Info("semantic log ready", "path", factLog.Path(), "format", factLog.Format())
		pipeOpts = append(pipeOpts, pipeline.WithSemanticLog(factLog))
	}

	p, err := pipeline.New(st, pipeOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create pipeline", err)
	}

	srvOpts := []server.Option{server.WithLogger(logger)}
	if opts.TokenGenerator != nil {
		srvOpts = append(srvOpts, server.WithTokenGenerator(opts.TokenGenerator))
	}
	srv, err := server.New(cfg.ServerSettings(), p, srvOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create server", err)
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	// The pipeline outlives ctx: it must keep serving requests that are
	// still draining, and only stops once the HTTP server is down.
	g.Go(func() error {
		return p.Run(context.Background())
	})

	g.Go(func() error {
		defer p.Stop()

		errc, err := srv.Start(context.WithoutCancel(gctx))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Affect grid listening on %s\n", srv.BaseURL())
		fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")
		if opts.Ready != nil {
			opts.Ready(srv)
		}

		select {
		case <-gctx.Done():
		case err := <-errc:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
		}
		logger.Info("draining http server", "timeout", cfg.Server.ShutdownTimeout)
		return srv.Shutdown(context.Background())
	})

	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, cfg.Metrics.Addr, recorder, cfg.Server.ShutdownTimeout, logger)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "server error", err)
	}

	logger.Info("affectgrid stopped gracefully")
	return nil
}

// logExistingCoordinates reports the rows present at startup. Each row is
// only listed at Debug level.
func logExistingCoordinates(ctx context.Context, st *store.Store, logger *slog.Logger) error {
	count, err := st.CountCoordinates(ctx)
	if err != nil {
		return err
	}
	logger.Info("database ready", "coordinates", count)

	if count == 0 || !logger.Enabled(ctx, slog.LevelDebug) {
		return nil
	}
	coords, err := st.Coordinates(ctx)
	if err != nil {
		return err
	}
	for _, c := range coords {
		logger.Debug("stored coordinate", "id", c.ID, "x", c.X, "y", c.Y)
	}
	return nil
}

// serveMetrics exposes the Prometheus registry until ctx ends.
func serveMetrics(ctx context.Context, addr string, recorder *metrics.Recorder, shutdownTimeout time.Duration, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", recorder.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	logger.Info("metrics listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}
