// Package cli wires querykit's services into the querykit command.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/querykit/internal/config"
	"github.com/kailas-cloud/querykit/internal/db"
	dbRedis "github.com/kailas-cloud/querykit/internal/db/redis"
	logpkg "github.com/kailas-cloud/querykit/internal/logger"
	"github.com/kailas-cloud/querykit/internal/transport/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Env        string
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "querykit",
		Short: "Search query building, bulk reconciliation and hydration checks",
		Long: `querykit builds engine search bodies, removes records with bulk deletes,
reconciles bulk responses and checks that search hits hydrate to records.

"serve" runs the reconciliation sidecar for callers in other languages.`,
		SilenceErrors: true, // main prints the returned error
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: config/<env>.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Env, "env", config.GetEnv(), "environment: local, dev, prod, test")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// loadConfig reads the explicit --config file, or the file of --env.
func (o *RootOptions) loadConfig() (config.Config, error) {
	if o.ConfigPath != "" {
		return config.LoadFile(o.ConfigPath)
	}
	return config.Load(o.Env)
}

func (o *RootOptions) newLogger(cfg config.Config) (*zap.Logger, error) {
	return logpkg.NewLogger(o.Env, cfg.Logging.Level)
}

func newEngineClient(cfg config.Config, logger *zap.Logger) (*engine.Client, error) {
	return engine.NewClient(&engine.Config{
		URL:      cfg.Engine.URL,
		Username: cfg.Engine.Username,
		Password: cfg.Engine.Password,
		Timeout:  time.Duration(cfg.Engine.TimeoutSec) * time.Second,
		Logger:   logger,
	})
}

// openCache connects to the response cache store and waits until it answers.
func openCache(ctx context.Context, cfg config.Config) (db.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.ConfigFromCache(cfg.Cache))
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, 0); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
