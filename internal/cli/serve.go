package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/querykit/internal/config"
	"github.com/kailas-cloud/querykit/internal/metrics"
	chiTransport "github.com/kailas-cloud/querykit/internal/transport/chi"
	"github.com/kailas-cloud/querykit/internal/version"
	"github.com/kailas-cloud/querykit/pkg/hydration"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reconciliation sidecar",
		Long: `Run the HTTP sidecar exposing bulk reconciliation and hydration checks.

Routes: POST /v1/bulk/reconcile, POST /v1/hydration/check, GET /healthz, GET /metrics.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.HTTP.Port = port
			}
			logger, err := rootOpts.newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, rootOpts.Env, logger)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "override http.port")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config, env string, logger *zap.Logger) error {
	info := version.Get()
	logger.Info("Starting querykit sidecar",
		zap.String("version", info.Version),
		zap.String("commit", info.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("hydration_mode", cfg.Hydration.Mode),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	metrics.Register()

	mode, err := hydration.ParseMode(cfg.Hydration.Mode)
	if err != nil {
		return err
	}
	opts := chiTransport.Options{
		Mode:         mode,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		APIKeys:      cfg.Auth.APIKeys,
	}

	client, err := newEngineClient(cfg, logger)
	if err != nil {
		return err
	}
	opts.Engine = client

	if cfg.Cache.Enabled {
		store, err := openCache(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))
		opts.Cache = store
	}

	server := chiTransport.NewServer(opts, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
