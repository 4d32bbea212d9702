package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/premiscsv2xml/internal/audit"
	"github.com/JonMunkholm/premiscsv2xml/internal/config"
	"github.com/JonMunkholm/premiscsv2xml/internal/core"
	"github.com/JonMunkholm/premiscsv2xml/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints the coded message for err, then the technical error.
func reportError(w io.Writer, err error) {
	ue := core.NewUserError(err)
	fmt.Fprintln(w, "Error:", ue.Summary())
	fmt.Fprintln(w, "Detail:", ue.Technical)
}

// app carries the state shared by all subcommands once the root has run.
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "premiscsv2xml",
		Short:         "Convert PREMIS objects and events CSV tables into a PREMIS 3.0 XML document",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (default $"+config.FileEnv+")")

	root.AddCommand(newConvertCmd(a), newServeCmd(a))
	return root
}

// setup loads .env, configuration and logging.
func (a *app) setup() error {
	// Overload overwrites existing env vars
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	} else {
		slog.Debug("loaded .env file (overwriting existing env vars)")
	}

	path, err := expandPath(a.configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())
	return nil
}

// openLedger connects the run ledger when DATABASE_URL is set.
// The returned close func is never nil.
func openLedger(ctx context.Context, cfg config.DatabaseConfig) (core.RunRecorder, func(), error) {
	if !cfg.LedgerEnabled() {
		return nil, func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("record run ledger: parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("record run ledger: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("record run ledger: ping: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	store := audit.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("record run ledger: %w", err)
	}
	return store, pool.Close, nil
}
